package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vaultsandbox/docsign"
)

// Environment variables read by the command.
const (
	envKeyBits     = "DOCSIGN_KEY_BITS"
	envRounds      = "DOCSIGN_MR_ROUNDS"
	envHash        = "DOCSIGN_HASH"
	envKeyPassword = "DOCSIGN_KEY_PASSWORD"
	envLogLevel    = "DOCSIGN_LOG_LEVEL"
)

// Config holds the process environment of a run.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Getenv looks up environment variables. Values found here take
	// precedence over EnvFile.
	Getenv func(string) string
	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string
}

// DefaultConfig returns a Config wired to the real process.
func DefaultConfig() *Config {
	return &Config{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		EnvFile: ".env",
	}
}

// settings is the parsed configuration.
type settings struct {
	keyBits  int
	rounds   int
	hash     docsign.Hash
	password string
	logLevel zerolog.Level
}

func loadSettings(cfg *Config) (*settings, error) {
	fileEnv := map[string]string{}
	if cfg.EnvFile != "" {
		m, err := godotenv.Read(cfg.EnvFile)
		switch {
		case err == nil:
			fileEnv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", cfg.EnvFile, err)
		}
	}

	lookup := func(key string) string {
		if cfg.Getenv != nil {
			if v := cfg.Getenv(key); v != "" {
				return v
			}
		}
		return fileEnv[key]
	}

	s := &settings{
		keyBits:  docsign.DefaultKeyBits,
		rounds:   docsign.DefaultPrimalityRounds,
		hash:     docsign.SHA3_256,
		password: lookup(envKeyPassword),
		logLevel: zerolog.WarnLevel,
	}

	if v := lookup(envKeyBits); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", envKeyBits, v)
		}
		s.keyBits = n
	}
	if v := lookup(envRounds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", envRounds, v)
		}
		s.rounds = n
	}
	if v := lookup(envHash); v != "" {
		h, err := docsign.ParseHash(strings.ToUpper(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envHash, err)
		}
		s.hash = h
	}
	if v := lookup(envLogLevel); v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envLogLevel, err)
		}
		s.logLevel = level
	}

	return s, nil
}

func (s *settings) logger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(s.logLevel).With().Timestamp().Logger()
}

func (s *settings) signer(logger zerolog.Logger) (*docsign.Signer, error) {
	return docsign.New(
		docsign.WithKeyBits(s.keyBits),
		docsign.WithPrimalityRounds(s.rounds),
		docsign.WithHash(s.hash),
		docsign.WithLogger(logger),
	)
}
