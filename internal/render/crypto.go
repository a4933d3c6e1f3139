package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrPasswordRequired is returned for encrypted PDFs when no password is configured.
var ErrPasswordRequired = errors.New("pdf is encrypted and no password was provided")

// IsPasswordError reports whether err looks like a pdfcpu encryption failure.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPasswordRequired) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, keyword := range []string{"password", "encrypted", "decrypt"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// isEncrypted probes the file by counting its pages, which fails for
// encrypted documents opened without credentials.
func isEncrypted(path string) (bool, error) {
	if _, err := api.PageCountFile(path); err != nil {
		if IsPasswordError(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check PDF encryption status: %w", err)
	}
	return false, nil
}

// decryptIfNeeded returns a readable copy of path. For encrypted files this is
// a temporary decrypted PDF that cleanup removes; otherwise path itself.
func decryptIfNeeded(path, password string) (string, func(), error) {
	noop := func() {}
	encrypted, err := isEncrypted(path)
	if err != nil || !encrypted {
		return path, noop, err
	}
	if password == "" {
		return "", noop, ErrPasswordRequired
	}

	tmp, err := os.CreateTemp("", "laytext-decrypted-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tmp.Close()
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.DecryptFile(path, tmp.Name(), conf); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
