package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"contratos/config"
)

func TestSaveDefaultConfigCreatesExampleTemplate(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "create-template.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# contratos configuration") {
		t.Fatalf("expected example header in config file, got:\n%s", text)
	}
	if !strings.Contains(text, "contracts:") || !strings.Contains(text, config.DefaultContractsURL) {
		t.Fatalf("expected contracts feed URL example in config file, got:\n%s", text)
	}
	if _, err := config.ValidateYAMLContent(content); err != nil {
		t.Fatalf("expected created template to validate: %v", err)
	}
}

func TestSaveDefaultConfigDoesNotOverwriteExistingFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "existing.yaml")
	original := "feeds:\n  contracts:\n    url: \"https://example.org/contratos.csv\"\nstorage:\n  keep: 2\n"
	if err := os.WriteFile(tmpConfig, []byte(original), 0o644); err != nil {
		t.Fatalf("failed writing initial config: %v", err)
	}

	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("failed reading existing config after create: %v", err)
	}
	if string(content) != original {
		t.Fatalf("expected existing config to remain unchanged")
	}
}

func TestPrintConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.ValidateYAMLContent([]byte(`
feeds:
  payments:
    url: "https://example.org/pagamentos.tsv"
    format: tsv
    delimiter: tab
fields:
  creditor:
    aliases: ["FORNECEDOR", "ENTIDADE"]
`))
	if err != nil {
		t.Fatalf("validate config: %v", err)
	}

	var out bytes.Buffer
	printConfig(&out, cfg)

	text := out.String()
	for _, want := range []string{
		"feeds.contracts.url: " + config.DefaultContractsURL + "\n",
		"feeds.payments.url: https://example.org/pagamentos.tsv\n",
		"feeds.payments.format: tsv\n",
		"feeds.payments.delimiter: \"tab\"\n",
		"serve.port: 8080\n",
		"fields: 1 override(s)\n",
		"fields.creditor.aliases: FORNECEDOR | ENTIDADE\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}
