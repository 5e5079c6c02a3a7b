package main

import (
	"bytes"
	"strings"
	"testing"

	"heating_card/internal/config"
	"heating_card/internal/logger"
	"heating_card/internal/signals"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommand(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		stdin string
	}{
		{name: "argument", args: []string{"hash-password", "s3cret"}},
		{name: "stdin", args: []string{"hash-password"}, stdin: "s3cret\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetIn(strings.NewReader(tc.stdin))
			rootCmd.SetArgs(tc.args)
			t.Cleanup(func() { rootCmd.SetArgs(nil) })

			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("execute: %v", err)
			}
			hash := strings.TrimSpace(out.String())
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
				t.Fatalf("printed hash does not verify: %v (%q)", err, hash)
			}
		})
	}
}

func TestHashPasswordCommand_Empty(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"hash-password", "  "})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestOpenSinkWithoutBroker(t *testing.T) {
	sink, closeSink := openSink(config.MQTTConfig{}, logger.Nop())
	defer closeSink()
	if _, ok := sink.(signals.Discard); !ok {
		t.Fatalf("expected Discard sink, got %T", sink)
	}
}
