package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/config"
)

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		AllowedExtensions: []string{".pdf"},
		MaxUploadBytes:    10 << 20,
	}
}

func TestValidateUploadAcceptsPDF(t *testing.T) {
	err := ValidateUpload("guide.pdf", 1024, testIngestConfig())
	assert.NoError(t, err)
}

func TestValidateUploadRejectsWrongExtension(t *testing.T) {
	err := ValidateUpload("notes.docx", 1024, testIngestConfig())
	require.Error(t, err)
	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "notes.docx", ue.Filename)
}

func TestValidateUploadRejectsOversized(t *testing.T) {
	err := ValidateUpload("big.pdf", (10<<20)+1, testIngestConfig())
	require.Error(t, err)
	var ue *UploadError
	assert.ErrorAs(t, err, &ue)
}

func TestValidateUploadRejectsEmpty(t *testing.T) {
	err := ValidateUpload("empty.pdf", 0, testIngestConfig())
	assert.Error(t, err)
}

func TestValidateUploadCaseInsensitiveExtension(t *testing.T) {
	err := ValidateUpload("GUIDE.PDF", 1024, testIngestConfig())
	assert.NoError(t, err)
}

func TestGuessTitle(t *testing.T) {
	assert.Equal(t, "Глава 1. Белки", guessTitle("\n  Глава 1. Белки  \nдлинный текст страницы"))
	assert.Equal(t, "", guessTitle(""))
}
