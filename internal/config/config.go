package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyOpenAIAPIKey      = "OPENAI_API_KEY"
	KeyOpenAIBaseURL     = "OPENAI_BASE_URL"
	KeyR2AccountID       = "R2_ACCOUNT_ID"
	KeyR2AccessKeyID     = "R2_ACCESS_KEY_ID"
	KeyR2SecretAccessKey = "R2_SECRET_ACCESS_KEY"
	KeyR2BucketName      = "R2_BUCKET_NAME"
	KeyR2Endpoint        = "R2_ENDPOINT"

	DefaultEnvFile = ".env"
)

var allKeys = []string{
	KeyOpenAIAPIKey,
	KeyOpenAIBaseURL,
	KeyR2AccountID,
	KeyR2AccessKeyID,
	KeyR2SecretAccessKey,
	KeyR2BucketName,
	KeyR2Endpoint,
}

// Config carries every credential and endpoint the clients need. Values are
// not validated at load time; each client checks what its code path uses.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Endpoint        string
}

// MissingError reports configuration values that are absent for the code
// path being executed.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Keys, ", "))
}

// IsMissing reports whether err is, or wraps, a *MissingError.
func IsMissing(err error) bool {
	var missing *MissingError
	return errors.As(err, &missing)
}

// Load reads configuration from the process environment. Values from envFile
// act as fallbacks; the process environment always wins. An empty envFile
// means the default .env in the working directory, which may be absent.
func Load(envFile string) (Config, error) {
	fileValues, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	for key, value := range fileValues {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return fromViper(v), nil
}

func readEnvFile(envFile string) (map[string]string, error) {
	explicit := strings.TrimSpace(envFile) != ""
	if !explicit {
		envFile = DefaultEnvFile
		if _, err := os.Stat(envFile); err != nil {
			return nil, nil
		}
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	return values, nil
}

func fromViper(v *viper.Viper) Config {
	get := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	return Config{
		OpenAIAPIKey:      get(KeyOpenAIAPIKey),
		OpenAIBaseURL:     get(KeyOpenAIBaseURL),
		R2AccountID:       get(KeyR2AccountID),
		R2AccessKeyID:     get(KeyR2AccessKeyID),
		R2SecretAccessKey: get(KeyR2SecretAccessKey),
		R2BucketName:      get(KeyR2BucketName),
		R2Endpoint:        get(KeyR2Endpoint),
	}
}

// RequireTranscription checks the values needed to call the transcription API.
func (c Config) RequireTranscription() error {
	return requireKeys(map[string]string{
		KeyOpenAIAPIKey: c.OpenAIAPIKey,
	})
}

// RequireObjectStore checks the values needed to presign bucket downloads.
// R2_ACCOUNT_ID may be omitted when R2_ENDPOINT is set.
func (c Config) RequireObjectStore() error {
	values := map[string]string{
		KeyR2AccessKeyID:     c.R2AccessKeyID,
		KeyR2SecretAccessKey: c.R2SecretAccessKey,
		KeyR2BucketName:      c.R2BucketName,
	}
	if c.R2Endpoint == "" {
		values[KeyR2AccountID] = c.R2AccountID
	}
	return requireKeys(values)
}

func requireKeys(values map[string]string) error {
	var missing []string
	for _, key := range allKeys {
		value, ok := values[key]
		if ok && strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingError{Keys: missing}
}
