// Package docsign signs and verifies documents with RSA-PSS.
//
// Every document gets its own freshly generated key pair. The signature,
// the document digest and the document bytes travel together in a
// SignaturePackage; the public key travels as a PEM-style text envelope and
// the private key, when it has to be stored, is sealed under a password.
//
// Basic usage:
//
//	signer, err := docsign.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	signed, err := signer.SignDocument(ctx, &docsign.SignRequest{
//	    Document: []byte("hello world"),
//	    Sender:   "alice@example.com",
//	    Receiver: "bob@example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := signer.VerifyPackage(ctx, signed.Package, signed.PublicKey)
//	fmt.Println("valid:", result.Valid, result.Reason)
package docsign
