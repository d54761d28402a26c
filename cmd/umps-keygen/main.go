// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
)

// umps-keygen generates an Ed25519 keypair for Stonehouse-level
// authentication. NATS has no native CurveZMQ binding, so Ed25519
// signatures stand in for the CURVE mechanism's public-key handshake:
// ServerPublicKey/ClientPublicKey in auth.ZapOptions hold the base64 form
// this tool prints.
func main() {
	out := flag.String("o", "", "write keys to <prefix>.pub and <prefix>.key instead of stdout")
	flag.Parse()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "umps-keygen: %s\n", err.Error())
		os.Exit(1)
	}

	pubB64 := base64.StdEncoding.EncodeToString(pub)
	privB64 := base64.StdEncoding.EncodeToString(priv)

	if *out == "" {
		fmt.Fprintf(os.Stdout, "STONEHOUSE_PUBLIC_KEY=%s\nSTONEHOUSE_SECRET_KEY=%s\n", pubB64, privB64)
		return
	}

	if err := os.WriteFile(*out+".pub", []byte(pubB64+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "umps-keygen: writing %s.pub: %s\n", *out, err.Error())
		os.Exit(1)
	}
	if err := os.WriteFile(*out+".key", []byte(privB64+"\n"), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "umps-keygen: writing %s.key: %s\n", *out, err.Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "wrote %s.pub and %s.key\n", *out, *out)
}
