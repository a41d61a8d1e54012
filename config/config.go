package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// Load builds the configuration map. Values are taken, in order of precedence,
// from the process environment (after loading .env), the YAML file named by
// CONFIG_FILE and the SSM parameter path named by SSM_PARAMETER_PATH. A later
// source only fills keys the earlier ones left unset.
func Load(ctx context.Context) (map[string]string, error) {
	loadDotEnv()
	c := New()

	if file := GetString(c, "CONFIG_FILE", ""); file != "" {
		values, err := readYAML(file)
		if err != nil {
			return nil, err
		}
		n := merge(c, values)
		log.Info().Str("file", file).Int("keys", n).Msg("Loaded config file")
	}

	if paramPath := GetString(c, "SSM_PARAMETER_PATH", ""); paramPath != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		values, err := readSSM(ctx, ssm.NewFromConfig(awsCfg), paramPath)
		if err != nil {
			return nil, err
		}
		n := merge(c, values)
		log.Info().Str("path", paramPath).Int("keys", n).Msg("Loaded SSM parameters")
	}

	return c, nil
}

func loadDotEnv() {
	possiblePaths := []string{
		".env",
		filepath.Join("..", ".env"),
	}
	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded .env file")
			return
		}
	}
	log.Warn().Msg("No .env file found, using existing environment variables")
}

// readYAML reads a flat key/value document. Non-string scalars are kept in
// their textual form.
func readYAML(file string) (map[string]string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", file, err)
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", file, err)
	}

	values := make(map[string]string, len(doc))
	for key, node := range doc {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("config file %s: key %s is not a scalar", file, key)
		}
		values[key] = node.Value
	}
	return values, nil
}

// readSSM fetches every parameter below paramPath. The key of each value is
// the last segment of the parameter name.
func readSSM(ctx context.Context, client ssm.GetParametersByPathAPIClient, paramPath string) (map[string]string, error) {
	values := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(paramPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read ssm parameters under %s: %w", paramPath, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			values[path.Base(name)] = aws.ToString(p.Value)
		}
	}
	return values, nil
}

// merge copies values into c for keys c does not have and reports how many
// were copied.
func merge(c map[string]string, values map[string]string) int {
	n := 0
	for key, value := range values {
		if _, ok := c[key]; ok {
			continue
		}
		c[key] = value
		n++
	}
	return n
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}
	return asBool
}

// GetSeconds reads an integer number of seconds as a duration.
func GetSeconds(config map[string]string, key string, defaultValue time.Duration) time.Duration {
	secs := GetInt(config, key, -1)
	if secs < 0 {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}

// GetList splits a comma separated value, dropping blank entries.
func GetList(config map[string]string, key string) []string {
	var out []string
	for _, item := range strings.Split(GetString(config, key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
