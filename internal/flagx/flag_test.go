package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	server := []string{"-a", "-r", "-abi", "-gas", "-t"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "server flags kept, config and env dropped",
			args:    []string{"-c", "shop.json", "-env", ".env", "-r", "http://node:8545", "-gas", "300000"},
			allowed: server,
			want:    []string{"-r", "http://node:8545", "-gas", "300000"},
		},
		{
			name:    "equals form",
			args:    []string{"-t=90s", "-abi=s3://abis/shop.json", "-x=0xabc"},
			allowed: server,
			want:    []string{"-t=90s", "-abi=s3://abis/shop.json"},
		},
		{
			name:    "value of unknown flag is not mistaken for a flag",
			args:    []string{"-test.run", "TestX", "-a", ":5000"},
			allowed: server,
			want:    []string{"-a", ":5000"},
		},
		{
			name:    "dash token never consumed as value",
			args:    []string{"-a", "-r", "http://node:8545"},
			allowed: server,
			want:    []string{"-a", "-r", "http://node:8545"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-gas"},
			allowed: server,
			want:    []string{"-gas"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-config", "two.json", "-c", "three.json"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "one.json", "-config", "two.json", "-c", "three.json"},
		},
		{
			name:    "nothing allowed yields empty slice",
			args:    []string{"-a", ":5000", "positional"},
			allowed: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "shop.json"}
		assert.Equal(t, "shop.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/etc/shop/server.json"}
		assert.Equal(t, "/etc/shop/server.json", JsonConfigFlags())
	})

	t.Run("server flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "0xabc", "-gas", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("last occurrence wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/etc/shop/base.json", "-config", "/etc/shop/override.json"}
		assert.Equal(t, "/etc/shop/override.json", JsonConfigFlags())
	})
}

func TestEnvFileFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", ":8080", "-env", "/etc/shop/.env"}
	assert.Equal(t, "/etc/shop/.env", EnvFileFlags())

	os.Args = []string{"testbin", "-dotenv=local.env"}
	assert.Equal(t, "local.env", EnvFileFlags())

	os.Args = []string{"testbin", "-c", "conf.json"}
	assert.Empty(t, EnvFileFlags())
}
