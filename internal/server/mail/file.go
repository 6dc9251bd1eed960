package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/logging"
)

// FileSender writes each email as a JSON file instead of delivering it.
// Used in testing/ci environments so flows that send email stay observable
// without an SMTP server.
type FileSender struct {
	dir    string
	logger logging.Logger

	// now is a seam so tests get stable file names.
	now func() time.Time
}

// NewFileSender creates a Sender that dumps emails into dir.
func NewFileSender(dir string, logger logging.Logger) *FileSender {
	return &FileSender{dir: dir, logger: logger.With("module", "mail"), now: time.Now}
}

type emailFile struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *FileSender) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create email dir: %w", err)
	}

	content, err := json.MarshalIndent(emailFile{To: to, Subject: subject, HTML: htmlBody}, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("email-%d.json", s.now().UnixNano()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write email: %w", err)
	}

	s.logger.Info(ctx, "email written to disk", "path", path, "to", to)
	return nil
}
