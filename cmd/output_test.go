package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPrintOutput_JSON(t *testing.T) {
	data := OperationResult{
		Success: true,
		Message: "Installed shop.example.com",
		Items:   []string{"shop.service", "shop.timer"},
	}

	var printErr error
	output := captureStdio(t, func() { printErr = PrintOutput("json", data) })
	require.NoError(t, printErr)

	var result OperationResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, data, result)
}

func TestPrintOutput_YAML(t *testing.T) {
	data := OperationResult{
		Success: true,
		Message: "Synced 2 units",
		Details: map[string]string{"machine": "app-01"},
	}

	var printErr error
	output := captureStdio(t, func() { printErr = PrintOutput("yaml", data) })
	require.NoError(t, printErr)

	var result OperationResult
	require.NoError(t, yaml.Unmarshal([]byte(output), &result))
	assert.Equal(t, data, result)
}

// TestPrintOutput_YML accepts the yml alias.
func TestPrintOutput_YML(t *testing.T) {
	var printErr error
	output := captureStdio(t, func() {
		printErr = PrintOutput("yml", map[string]string{"serverName": "shop.example.com"})
	})
	require.NoError(t, printErr)

	var result map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(output), &result))
	assert.Equal(t, "shop.example.com", result["serverName"])
}

func TestPrintOutput_Text(t *testing.T) {
	var printErr error
	output := captureStdio(t, func() {
		printErr = PrintOutput("text", map[string]string{"framework": "express"})
	})
	require.NoError(t, printErr)

	assert.Contains(t, output, "framework")
	assert.Contains(t, output, "express")
}

func TestPrintOutput_UnsupportedFormat(t *testing.T) {
	err := PrintOutput("invalid", map[string]string{"key": "value"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: invalid")
}

// TestPrintJSON verifies indented encoding.
func TestPrintJSON(t *testing.T) {
	var printErr error
	output := captureStdio(t, func() {
		printErr = printJSON(map[string]interface{}{
			"serverName": "shop.example.com",
			"port":       3000,
		})
	})
	require.NoError(t, printErr)

	assert.Contains(t, output, `"serverName": "shop.example.com"`)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, float64(3000), result["port"])
}

func TestPrintYAML(t *testing.T) {
	data := CheckResultStructured{
		Name:        "Sites Directory",
		Status:      "passed",
		Message:     "Directory accessible",
		Suggestions: []string{"none"},
	}

	var printErr error
	output := captureStdio(t, func() { printErr = printYAML(data) })
	require.NoError(t, printErr)

	var result CheckResultStructured
	require.NoError(t, yaml.Unmarshal([]byte(output), &result))
	assert.Equal(t, data, result)
}
