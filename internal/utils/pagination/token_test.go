package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

func TestEncodeDecodeCursor(t *testing.T) {
	// Test case 1: Standard keyset position
	cursor := domain.SequenceCursor{ProdDttm: "20250830142530", CommitNo: "0042"}

	token := EncodeCursor(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor, decoded, "Cursor should match after decode")

	// Test case 2: Commit numbers containing the separator survive SplitN
	piped := domain.SequenceCursor{ProdDttm: "20250830142530", CommitNo: "00|42"}
	decodedPiped, err := DecodeCursor(EncodeCursor(piped))
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, piped, decodedPiped, "Cursor should match after decode")
}

func TestDecodeCursorError(t *testing.T) {
	// Test invalid base64
	_, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "A malformed token is a validation error")

	// Test invalid format (missing separator)
	_, err = DecodeCursor("MjAyNTA4MzAxNDI1MzA=") // base64 of "20250830142530"
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "A malformed token is a validation error")

	// Test empty timestamp component
	_, err = DecodeCursor("fDAwNDI=") // base64 of "|0042"
	assert.Error(t, err, "Should return an error for an empty timestamp")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "A malformed token is a validation error")
}
