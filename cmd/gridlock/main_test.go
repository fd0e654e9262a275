package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KAIST-CryptLab/gridlock/core/gridlock"
)

const testParams = `{"N":16,"M":43,"P":263}`

func TestParamsCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"params", "-params", testParams}, &stdout))

	var params gridlock.Parameters
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &params))
	require.Equal(t, 16, params.N())
	require.Equal(t, 43, params.M())

	stdout.Reset()
	require.NoError(t, run([]string{"params"}, &stdout))
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &params))
	require.Equal(t, 594, params.M())

	stdout.Reset()
	require.NoError(t, run([]string{"params", "-params", `{"N":32}`}, &stdout))
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &params))
	require.Equal(t, uint64(1031), params.P())
	require.Equal(t, 251, params.M())

	require.ErrorIs(t, run([]string{"params", "-params", `{"N":16,"P":259}`}, &stdout), gridlock.ErrInvalidParameters)
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := func(name string) string { return filepath.Join(dir, name) }

	msg := []byte("attack at dawn")
	require.NoError(t, os.WriteFile(path("msg.txt"), msg, 0o600))

	var stdout bytes.Buffer

	require.NoError(t, run([]string{"keygen", "-params", testParams, "-seed", "alice",
		"-sk", path("alice.sk"), "-pk", path("alice.pk")}, &stdout))

	require.NoError(t, run([]string{"encrypt", "-params", testParams,
		"-pk", path("alice.pk"), "-in", path("msg.txt"), "-out", path("msg.ct")}, &stdout))

	require.NoError(t, run([]string{"decrypt", "-params", testParams,
		"-sk", path("alice.sk"), "-in", path("msg.ct"), "-out", path("msg.out")}, &stdout))

	out, err := os.ReadFile(path("msg.out"))
	require.NoError(t, err)
	require.Equal(t, msg, out)

	stdout.Reset()
	require.NoError(t, run([]string{"decrypt", "-params", testParams,
		"-sk", path("alice.sk"), "-in", path("msg.ct")}, &stdout))
	require.Equal(t, msg, stdout.Bytes())

	require.NoError(t, run([]string{"keygen", "-params", testParams, "-seed", "bob",
		"-sk", path("bob.sk"), "-pk", path("bob.pk")}, &stdout))

	require.NoError(t, run([]string{"keyswitch", "-params", testParams, "-seed", "switch",
		"-sk", path("alice.sk"), "-to", path("bob.sk"), "-in", path("msg.ct"), "-out", path("bob.ct")}, &stdout))

	stdout.Reset()
	require.NoError(t, run([]string{"decrypt", "-params", testParams,
		"-sk", path("bob.sk"), "-in", path("bob.ct")}, &stdout))
	require.Equal(t, msg, stdout.Bytes())

	// keys derived from the same seed are identical
	require.NoError(t, run([]string{"keygen", "-params", testParams, "-seed", "alice",
		"-sk", path("again.sk"), "-pk", path("again.pk")}, &stdout))
	a, err := os.ReadFile(path("alice.sk"))
	require.NoError(t, err)
	b, err := os.ReadFile(path("again.sk"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestKeystoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "keys.db")

	msg := []byte{2, 1, 3, 7}
	in := filepath.Join(dir, "msg.bin")
	ct := filepath.Join(dir, "msg.ct")
	require.NoError(t, os.WriteFile(in, msg, 0o600))

	var stdout bytes.Buffer

	require.NoError(t, run([]string{"keygen", "-params", testParams, "-db", db, "-sk", "bob", "-pk", "bob.pub"}, &stdout))
	require.NoError(t, run([]string{"encrypt", "-params", testParams, "-db", db, "-pk", "bob.pub", "-in", in, "-out", ct}, &stdout))
	require.NoError(t, run([]string{"decrypt", "-params", testParams, "-db", db, "-sk", "bob", "-in", ct}, &stdout))
	require.Equal(t, msg, stdout.Bytes())

	// a public key is not accepted where a secret key is expected
	require.Error(t, run([]string{"decrypt", "-params", testParams, "-db", db, "-sk", "bob.pub", "-in", ct}, &stdout))

	require.Error(t, run([]string{"keygen", "-db", db, "-redis", "localhost:6379"}, &stdout))
}

func TestNoiseCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"noise", "-params", testParams, "-seed", "noise", "-samples", "4096"}, &stdout))
	require.True(t, strings.HasPrefix(stdout.String(), "samples=4096 sigma=1.6394 bound=10"), stdout.String())

	require.Error(t, run([]string{"noise", "-samples", "1"}, &stdout))
}

func TestUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.Error(t, run(nil, &stdout))
	require.Error(t, run([]string{"sign"}, &stdout))
	require.NoError(t, run([]string{"help"}, &stdout))
	require.Contains(t, stdout.String(), "USAGE")
}
