package users

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Password hashes use werkzeug's "method$salt$hex" layout.
const (
	defaultScryptN        = 1 << 15
	defaultScryptR        = 8
	defaultScryptP        = 1
	scryptKeyLen          = 64
	defaultPBKDF2Iters    = 600000
	saltLength            = 16
	saltChars             = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	scryptMethodPrefix    = "scrypt"
	pbkdf2MethodPrefix    = "pbkdf2"
	bcryptHashPrefix      = "$2"
	defaultPasswordMethod = "scrypt:32768:8:1"
)

var errUnknownHashMethod = errors.New("unknown password hash method")

// HashPassword returns a salted scrypt hash of password. There is no length limit.
func HashPassword(password string) (string, error) {
	salt, err := genSalt(saltLength)
	if err != nil {
		return "", err
	}
	sum, err := hashInternal(defaultPasswordMethod, salt, password)
	if err != nil {
		return "", err
	}
	return defaultPasswordMethod + "$" + salt + "$" + sum, nil
}

// CheckPassword reports whether password matches stored. Malformed or
// unsupported hashes never match.
func CheckPassword(stored, password string) bool {
	if strings.HasPrefix(stored, bcryptHashPrefix) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	sum, err := hashInternal(parts[0], parts[1], password)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(sum), []byte(parts[2]))
}

func hashInternal(method, salt, password string) (string, error) {
	name, rawArgs, _ := strings.Cut(method, ":")
	var args []string
	if rawArgs != "" {
		args = strings.Split(rawArgs, ":")
	}

	switch name {
	case scryptMethodPrefix:
		n, r, p := defaultScryptN, defaultScryptR, defaultScryptP
		if len(args) > 0 {
			if len(args) != 3 {
				return "", fmt.Errorf("%w: %s", errUnknownHashMethod, method)
			}
			vals, err := atois(args)
			if err != nil {
				return "", err
			}
			n, r, p = vals[0], vals[1], vals[2]
		}
		key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, scryptKeyLen)
		if err != nil {
			return "", fmt.Errorf("scrypt: %w", err)
		}
		return hex.EncodeToString(key), nil
	case pbkdf2MethodPrefix:
		hashName, iters := "sha256", defaultPBKDF2Iters
		switch len(args) {
		case 0:
		case 1:
			hashName = args[0]
		case 2:
			hashName = args[0]
			vals, err := atois(args[1:])
			if err != nil {
				return "", err
			}
			iters = vals[0]
		default:
			return "", fmt.Errorf("%w: %s", errUnknownHashMethod, method)
		}
		h, size, err := hashFunc(hashName)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), iters, size, h)), nil
	default:
		return "", fmt.Errorf("%w: %s", errUnknownHashMethod, method)
	}
}

func hashFunc(name string) (func() hash.Hash, int, error) {
	switch name {
	case "sha1":
		return sha1.New, sha1.Size, nil
	case "sha256":
		return sha256.New, sha256.Size, nil
	case "sha512":
		return sha512.New, sha512.Size, nil
	default:
		return nil, 0, fmt.Errorf("%w: pbkdf2 digest %s", errUnknownHashMethod, name)
	}
}

func atois(raw []string) ([]int, error) {
	out := make([]int, len(raw))
	for i, s := range raw {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%w: bad parameter %q", errUnknownHashMethod, s)
		}
		out[i] = v
	}
	return out, nil
}

func genSalt(length int) (string, error) {
	limit := big.NewInt(int64(len(saltChars)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b.WriteByte(saltChars[n.Int64()])
	}
	return b.String(), nil
}
