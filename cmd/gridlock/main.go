// Package main provides the gridlock command line interface.
package main

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tuneinsight/lattigo/v5/utils/sampling"
	"golang.org/x/crypto/blake2b"

	"github.com/KAIST-CryptLab/gridlock/core/gridlock"
	"github.com/KAIST-CryptLab/gridlock/internal/keystore"
	"github.com/KAIST-CryptLab/gridlock/utils/bitvec"
)

const appName = "gridlock"

func main() {
	log.SetFlags(0)
	log.SetPrefix(appName + ": ")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {

	if len(args) < 1 {
		printUsage(stdout)
		return errors.New("missing command")
	}

	switch args[0] {
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	case "params":
		return cmdParams(args[1:], stdout)
	case "keygen":
		return cmdKeygen(args[1:], stdout)
	case "encrypt":
		return cmdEncrypt(args[1:], stdout)
	case "decrypt":
		return cmdDecrypt(args[1:], stdout)
	case "keyswitch":
		return cmdKeySwitch(args[1:], stdout)
	case "noise":
		return cmdNoise(args[1:], stdout)
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%[1]s - LWE bitwise public-key encryption

USAGE:
    %[1]s <COMMAND> [OPTIONS]

COMMANDS:
    params    Print the parameter set as JSON
    keygen    Generate a key pair
    encrypt   Encrypt a file under a public key
    decrypt   Decrypt a file with a secret key
    keyswitch Re-encrypt a ciphertext file from one secret key to another
    noise     Print empirical statistics of the noise distribution

Use "%[1]s <COMMAND> -h" for the options of a command.

EXAMPLES:
    %[1]s keygen -sk alice.sk -pk alice.pk
    %[1]s encrypt -pk alice.pk -in msg.txt -out msg.ct
    %[1]s decrypt -sk alice.sk -in msg.ct -out msg.txt
    %[1]s keygen -db keys.db -sk alice -pk alice.pub
`, appName)
}

// options shared by the subcommands.
type options struct {
	params string
	seed   string
	db     string
	redis  string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.params, "params", "", "parameters as a JSON ParametersLiteral (default N64P4099)")
	fs.StringVar(&o.seed, "seed", "", "derive all randomness from this seed (testing only)")
	fs.StringVar(&o.db, "db", "", "store keys in this SQLite database instead of files")
	fs.StringVar(&o.redis, "redis", "", "store keys in the Redis server at this address instead of files")
}

func (o *options) parameters() (params gridlock.Parameters, err error) {
	if o.params == "" {
		return gridlock.NewParametersFromLiteral(gridlock.N64P4099)
	}
	if err = json.Unmarshal([]byte(o.params), &params); err != nil {
		return params, fmt.Errorf("-params: %w", err)
	}
	return
}

// prng returns a keyed PRNG if a seed is set, nil otherwise.
func (o *options) prng() (sampling.PRNG, error) {
	if o.seed == "" {
		return nil, nil
	}
	key := blake2b.Sum512([]byte(o.seed))
	return sampling.NewKeyedPRNG(key[:])
}

func (o *options) engine() (*gridlock.GridLock, error) {
	params, err := o.parameters()
	if err != nil {
		return nil, err
	}
	prng, err := o.prng()
	if err != nil {
		return nil, err
	}
	return gridlock.New(params, prng)
}

// store opens the keystore selected by -db or -redis, or returns nil.
func (o *options) store() (keystore.Store, error) {
	switch {
	case o.db != "" && o.redis != "":
		return nil, errors.New("-db and -redis are mutually exclusive")
	case o.db != "":
		return keystore.NewSQLiteStore(o.db)
	case o.redis != "":
		return keystore.NewRedisStore(keystore.RedisConfig{Addr: o.redis})
	default:
		return nil, nil
	}
}

// save writes obj to the keystore entry or the file called name.
func save(ctx context.Context, s keystore.Store, name string, kind keystore.Kind, obj encoding.BinaryMarshaler) error {
	if s != nil {
		return keystore.Save(ctx, s, name, kind, obj)
	}
	data, err := obj.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	return os.WriteFile(name, data, 0o600)
}

// load reads obj from the keystore entry or the file called name.
func load(ctx context.Context, s keystore.Store, name string, kind keystore.Kind, obj encoding.BinaryUnmarshaler) error {
	if s != nil {
		_, err := keystore.Load(ctx, s, name, kind, obj)
		return err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err = obj.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func cmdParams(args []string, stdout io.Writer) error {
	var o options
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := o.parameters()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "%s\n", data)
	return err
}

func cmdKeygen(args []string, stdout io.Writer) (err error) {
	var o options
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	o.register(fs)
	skName := fs.String("sk", "gridlock.sk", "secret key file or entry name")
	pkName := fs.String("pk", "gridlock.pk", "public key file or entry name")
	if err = fs.Parse(args); err != nil {
		return err
	}

	gl, err := o.engine()
	if err != nil {
		return err
	}

	s, err := o.store()
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	ctx := context.Background()

	sk, pk := gl.GenKeyPair()

	if err = save(ctx, s, *skName, keystore.KindSecretKey, sk); err != nil {
		return fmt.Errorf("save secret key: %w", err)
	}

	if err = save(ctx, s, *pkName, keystore.KindPublicKey, pk); err != nil {
		return fmt.Errorf("save public key: %w", err)
	}

	log.Printf("generated key pair %s/%s (%s)", *skName, *pkName, gl.Parameters())

	return nil
}

func cmdEncrypt(args []string, stdout io.Writer) (err error) {
	var o options
	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	o.register(fs)
	pkName := fs.String("pk", "gridlock.pk", "public key file or entry name")
	in := fs.String("in", "", "plaintext file")
	out := fs.String("out", "", "ciphertext file")
	if err = fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" {
		return errors.New("encrypt: -in and -out are required")
	}

	gl, err := o.engine()
	if err != nil {
		return err
	}

	s, err := o.store()
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	pk := new(gridlock.PublicKey)
	if err = load(context.Background(), s, *pkName, keystore.KindPublicKey, pk); err != nil {
		return fmt.Errorf("load public key: %w", err)
	}

	msg, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	ct, err := gl.Encrypt(pk, bitvec.FromBytes(msg))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = ct.WriteTo(f); err != nil {
		return fmt.Errorf("write ciphertext: %w", err)
	}

	log.Printf("encrypted %d bytes into %s", len(msg), *out)

	return f.Close()
}

func cmdDecrypt(args []string, stdout io.Writer) (err error) {
	var o options
	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	o.register(fs)
	skName := fs.String("sk", "gridlock.sk", "secret key file or entry name")
	in := fs.String("in", "", "ciphertext file")
	out := fs.String("out", "", "plaintext file, stdout if empty")
	if err = fs.Parse(args); err != nil {
		return err
	}

	if *in == "" {
		return errors.New("decrypt: -in is required")
	}

	params, err := o.parameters()
	if err != nil {
		return err
	}

	s, err := o.store()
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	sk := new(gridlock.SecretKey)
	if err = load(context.Background(), s, *skName, keystore.KindSecretKey, sk); err != nil {
		return fmt.Errorf("load secret key: %w", err)
	}

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()

	ct := new(gridlock.Ciphertext)
	if _, err = ct.ReadFrom(f); err != nil {
		return fmt.Errorf("read ciphertext: %w", err)
	}

	dec, err := gridlock.NewDecryptor(params, sk)
	if err != nil {
		return err
	}

	pt, err := dec.Decrypt(ct)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	msg, err := pt.Bytes()
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	if *out == "" {
		_, err = stdout.Write(msg)
		return err
	}

	return os.WriteFile(*out, msg, 0o600)
}

func cmdKeySwitch(args []string, stdout io.Writer) (err error) {
	var o options
	fs := flag.NewFlagSet("keyswitch", flag.ContinueOnError)
	o.register(fs)
	skIn := fs.String("sk", "gridlock.sk", "secret key of the input ciphertext")
	skOut := fs.String("to", "", "secret key of the output ciphertext")
	base := fs.Int("base", gridlock.DefaultKeySwitchingBase, "decomposition base")
	in := fs.String("in", "", "input ciphertext file")
	out := fs.String("out", "", "output ciphertext file")
	if err = fs.Parse(args); err != nil {
		return err
	}

	if *skOut == "" || *in == "" || *out == "" {
		return errors.New("keyswitch: -to, -in and -out are required")
	}

	gl, err := o.engine()
	if err != nil {
		return err
	}

	s, err := o.store()
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
	}

	ctx := context.Background()

	from, to := new(gridlock.SecretKey), new(gridlock.SecretKey)
	if err = load(ctx, s, *skIn, keystore.KindSecretKey, from); err != nil {
		return fmt.Errorf("load secret key: %w", err)
	}
	if err = load(ctx, s, *skOut, keystore.KindSecretKey, to); err != nil {
		return fmt.Errorf("load secret key: %w", err)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}

	ct := new(gridlock.Ciphertext)
	if err = ct.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("read ciphertext: %w", err)
	}

	ksk, err := gl.GenKeySwitchingKey(from, to, *base)
	if err != nil {
		return err
	}

	if ct, err = gl.KeySwitch(ct, ksk); err != nil {
		return fmt.Errorf("keyswitch: %w", err)
	}

	if data, err = ct.MarshalBinary(); err != nil {
		return err
	}

	log.Printf("switched %d samples from %s to %s", ct.Len(), *skIn, *skOut)

	return os.WriteFile(*out, data, 0o600)
}

func cmdNoise(args []string, stdout io.Writer) (err error) {
	var o options
	fs := flag.NewFlagSet("noise", flag.ContinueOnError)
	o.register(fs)
	samples := fs.Int("samples", 1<<16, "number of noise samples to draw")
	if err = fs.Parse(args); err != nil {
		return err
	}

	if *samples < 2 {
		return fmt.Errorf("noise: -samples=%d must be at least 2", *samples)
	}

	params, err := o.parameters()
	if err != nil {
		return err
	}

	prng, err := o.prng()
	if err != nil {
		return err
	}
	if prng == nil {
		if prng, err = sampling.NewPRNG(); err != nil {
			return err
		}
	}

	e := gridlock.NewErrorSampler(prng, params).ReadVectorNew(*samples)

	mean, stdev, err := gridlock.NoiseStatistics(e)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "samples=%d sigma=%.4f bound=%d mean=%.4f stdev=%.4f\n",
		*samples, params.Sigma(), params.Bound(), mean, stdev)
	return err
}
