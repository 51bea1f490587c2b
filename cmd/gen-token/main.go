package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	var (
		count  = flag.Int("count", 1, "number of tokens to generate")
		prefix = flag.String("prefix", "todo-user", "prefix for generated user IDs when count > 1")
		start  = flag.Int("start", 1, "starting index for generated user IDs when count > 1")
		ttl    = flag.Duration("ttl", time.Hour, "token lifetime")
		output = flag.String("output", "", "file to write generated tokens as a JSON array")
	)
	flag.Parse()

	if *count < 1 {
		log.Fatal("count must be at least 1")
	}
	if *start < 1 {
		log.Fatal("start index must be at least 1")
	}
	args := flag.Args()
	if len(args) > 0 && *count > 1 {
		log.Fatal("explicit user ID cannot be provided when generating multiple tokens")
	}

	secret := os.Getenv("LOCAL_AUTH_SHARED_SECRET")
	if secret == "" {
		log.Fatal("LOCAL_AUTH_SHARED_SECRET must be set")
	}

	tokens, err := generateTokens([]byte(secret), userIDs(*count, *prefix, *start, args), *ttl, time.Now())
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	if *output != "" {
		if err := writeTokens(*output, tokens); err != nil {
			log.Fatalf("write tokens: %v", err)
		}
	}

	fmt.Print(tokens[0])
}

func userIDs(count int, prefix string, start int, args []string) []string {
	ids := make([]string, count)
	for i := range ids {
		switch {
		case len(args) > 0:
			ids[i] = args[0]
		case count == 1:
			ids[i] = prefix
		default:
			ids[i] = fmt.Sprintf("%s-%d", prefix, start+i)
		}
	}
	return ids
}

// generateTokens signs one HS256 token per user, accepted by the API when
// AUTH_MODE=hs256.
func generateTokens(secret []byte, users []string, ttl time.Duration, now time.Time) ([]string, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}
	tokens := make([]string, len(users))
	for i, userID := range users {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": userID,
			"iat": now.Unix(),
			"exp": now.Add(ttl).Unix(),
		})
		signed, err := token.SignedString(secret)
		if err != nil {
			return nil, err
		}
		tokens[i] = signed
	}
	return tokens, nil
}

func writeTokens(path string, tokens []string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := sonic.Marshal(tokens)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
