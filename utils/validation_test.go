package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateItemName(t *testing.T) {
	valid := []string{"report.pdf", "Q3 budget", "résumé.docx", "a"}
	for _, name := range valid {
		assert.NoError(t, ValidateItemName(name), name)
	}

	invalid := []string{
		"",
		strings.Repeat("a", 256),
		"path/segment.txt",
		"back\\slash",
		"pipe|char",
		"CON",
		"nul.txt",
	}
	for _, name := range invalid {
		assert.Error(t, ValidateItemName(name), name)
	}
}
