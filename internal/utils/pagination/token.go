package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
)

// EncodeCursor creates a base64 encoded token from a keyset position.
// This is used for consistent pagination across the sequence endpoints.
func EncodeCursor(cursor domain.SequenceCursor) string {
	tokenStr := fmt.Sprintf("%s|%s", cursor.ProdDttm, cursor.CommitNo)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses the base64 encoded token back into a keyset position.
// A malformed token is client input and reports as a validation error.
func DecodeCursor(token string) (domain.SequenceCursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return domain.SequenceCursor{}, fmt.Errorf("%w: invalid pagination token format (base64 decode)", apperrors.ErrValidation)
	}
	tokenStr := string(decodedBytes)
	parts := strings.SplitN(tokenStr, "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return domain.SequenceCursor{}, fmt.Errorf("%w: invalid pagination token format (split)", apperrors.ErrValidation)
	}

	return domain.SequenceCursor{ProdDttm: parts[0], CommitNo: parts[1]}, nil
}
