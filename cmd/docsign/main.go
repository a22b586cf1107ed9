// Command docsign generates per-document key pairs, signs documents into
// signature packages and verifies them.
//
// Configuration comes from the environment or an optional .env file:
// DOCSIGN_KEY_BITS, DOCSIGN_MR_ROUNDS, DOCSIGN_HASH, DOCSIGN_KEY_PASSWORD and
// DOCSIGN_LOG_LEVEL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaultsandbox/docsign"
)

// errNotValid makes verify exit non-zero after printing its result.
var errNotValid = errors.New("signature is not valid")

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docsign <keygen|sign|verify|seal|open> [flags]")
	}

	s, err := loadSettings(cfg)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	logger := s.logger(stderr)

	signer, err := s.signer(logger)
	if err != nil {
		return fmt.Errorf("create signer: %w", err)
	}

	app := &app{cfg: cfg, settings: s, signer: signer}
	root := app.rootCommand()
	root.SetArgs(args[1:])
	if cfg.Stdin != nil {
		root.SetIn(cfg.Stdin)
	}
	if cfg.Stdout != nil {
		root.SetOut(cfg.Stdout)
	}
	root.SetErr(stderr)

	return root.ExecuteContext(context.Background())
}

type app struct {
	cfg      *Config
	settings *settings
	signer   *docsign.Signer
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "docsign",
		Short:         "RSA-PSS document signing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Args:  cobra.NoArgs,
		RunE:  a.runKeygen,
	}

	sign := &cobra.Command{
		Use:   "sign",
		Short: "Sign a document read from --in or stdin with a fresh key pair",
		Args:  cobra.NoArgs,
		RunE:  a.runSign,
	}
	sign.Flags().String("in", "", "document file (default stdin)")
	sign.Flags().String("sender", "", "sender identity")
	sign.Flags().String("receiver", "", "receiver identity")
	_ = sign.MarkFlagRequired("sender")
	_ = sign.MarkFlagRequired("receiver")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature package read from --package or stdin",
		Args:  cobra.NoArgs,
		RunE:  a.runVerify,
	}
	verify.Flags().String("package", "", "signature package file (default stdin)")
	verify.Flags().String("public-key", "", "public key file")
	_ = verify.MarkFlagRequired("public-key")

	seal := &cobra.Command{
		Use:   "seal",
		Short: "Seal a private key with DOCSIGN_KEY_PASSWORD",
		Args:  cobra.NoArgs,
		RunE:  a.runSeal,
	}
	seal.Flags().String("private-key", "", "private key file (default stdin)")

	open := &cobra.Command{
		Use:   "open",
		Short: "Open a sealed private key with DOCSIGN_KEY_PASSWORD",
		Args:  cobra.NoArgs,
		RunE:  a.runOpen,
	}
	open.Flags().String("sealed", "", "sealed key file (default stdin)")

	root.AddCommand(keygen, sign, verify, seal, open)
	return root
}

// KeygenOutput is printed by keygen.
type KeygenOutput struct {
	PublicKey        string `json:"publicKey"`
	PrivateKey       string `json:"privateKey,omitempty"`
	SealedPrivateKey string `json:"sealedPrivateKey,omitempty"`
}

func (a *app) runKeygen(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	kp, err := a.signer.GenerateKeyPair(ctx)
	if err != nil {
		return err
	}

	pub, err := docsign.MarshalPublicKey(kp.PublicKey())
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}
	out := KeygenOutput{PublicKey: pub}

	if a.settings.password != "" {
		out.SealedPrivateKey, err = a.signer.SealPrivateKey(ctx, kp.PrivateKey(), []byte(a.settings.password))
	} else {
		out.PrivateKey, err = docsign.MarshalPrivateKey(kp.PrivateKey())
	}
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), out)
}

// SignOutput is printed by sign.
type SignOutput struct {
	Package          *docsign.SignaturePackage `json:"package"`
	PublicKey        string                    `json:"publicKey"`
	SealedPrivateKey string                    `json:"sealedPrivateKey,omitempty"`
}

func (a *app) runSign(cmd *cobra.Command, _ []string) error {
	doc, err := readInput(cmd, "in")
	if err != nil {
		return err
	}
	sender, _ := cmd.Flags().GetString("sender")
	receiver, _ := cmd.Flags().GetString("receiver")

	req := &docsign.SignRequest{
		Document: doc,
		Sender:   sender,
		Receiver: receiver,
	}
	if a.settings.password != "" {
		req.Password = []byte(a.settings.password)
	}

	signed, err := a.signer.SignDocument(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("sign document: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), SignOutput{
		Package:          signed.Package,
		PublicKey:        signed.PublicKey,
		SealedPrivateKey: signed.SealedPrivateKey,
	})
}

// VerifyOutput is printed by verify.
type VerifyOutput struct {
	Valid   bool                         `json:"valid"`
	Reason  string                       `json:"reason,omitempty"`
	Details *docsign.VerificationDetails `json:"details,omitempty"`
}

func (a *app) runVerify(cmd *cobra.Command, _ []string) error {
	data, err := readInput(cmd, "package")
	if err != nil {
		return err
	}
	keyPath, _ := cmd.Flags().GetString("public-key")
	pub, err := readFile(keyPath)
	if err != nil {
		return err
	}

	var result docsign.VerificationResult
	pkg, err := docsign.ParsePackage(data)
	if err != nil {
		result = docsign.VerificationResult{Reason: docsign.ReasonMalformedPackage}
	} else {
		result = a.signer.VerifyPackage(cmd.Context(), pkg, string(pub))
	}

	if err := writeJSON(cmd.OutOrStdout(), VerifyOutput{
		Valid:   result.Valid,
		Reason:  result.Reason,
		Details: result.Details,
	}); err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", errNotValid, result.Reason)
	}
	return nil
}

func (a *app) runSeal(cmd *cobra.Command, _ []string) error {
	if a.settings.password == "" {
		return fmt.Errorf("%s is required", envKeyPassword)
	}
	text, err := readInput(cmd, "private-key")
	if err != nil {
		return err
	}
	priv, err := docsign.ParsePrivateKey(string(text))
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	sealed, err := a.signer.SealPrivateKey(cmd.Context(), priv, []byte(a.settings.password))
	if err != nil {
		return fmt.Errorf("seal private key: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), sealed)
	return err
}

func (a *app) runOpen(cmd *cobra.Command, _ []string) error {
	if a.settings.password == "" {
		return fmt.Errorf("%s is required", envKeyPassword)
	}
	sealed, err := readInput(cmd, "sealed")
	if err != nil {
		return err
	}

	priv, err := a.signer.OpenPrivateKey(cmd.Context(), strings.TrimSpace(string(sealed)), []byte(a.settings.password))
	if err != nil {
		return fmt.Errorf("open private key: %w", err)
	}
	text, err := docsign.MarshalPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), text)
	return err
}

// readInput reads the file named by flag, or stdin when the flag is empty.
func readInput(cmd *cobra.Command, flag string) ([]byte, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path != "" {
		return readFile(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
