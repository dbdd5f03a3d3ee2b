// Package file implements a file genesis provider.
package file

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cryptogopniks/GopStake/common/logging"
	"github.com/cryptogopniks/GopStake/genesis/api"
)

// fileProvider provides the static genesis document the node was
// initialized with.
type fileProvider struct {
	document *api.Document
}

func (p *fileProvider) GetGenesisDocument() (*api.Document, error) {
	return p.document, nil
}

// NewFileProvider creates a new local file genesis provider.
func NewFileProvider(filename string) (api.Provider, error) {
	logger := logging.GetLogger("genesis/file").With("filename", filename)

	raw, err := os.ReadFile(filename)
	if err != nil {
		logger.Warn("failed to open genesis document",
			"err", err,
		)
		return nil, err
	}

	var doc api.Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("genesis: malformed genesis file: %w", err)
	}

	if err = doc.SanityCheck(); err != nil {
		return nil, fmt.Errorf("genesis: bad genesis file: %w", err)
	}

	return &fileProvider{document: &doc}, nil
}

// WriteFile writes a genesis document to the given file.
func WriteFile(doc *api.Document, filename string) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("genesis: failed to marshal genesis document: %w", err)
	}
	if err = os.WriteFile(filename, raw, 0o600); err != nil {
		return fmt.Errorf("genesis: failed to write genesis file: %w", err)
	}
	return nil
}
