// Package csvfile stores the ledger as a single CSV backing file.
//
// Every save rewrites the whole file through a temporary file in the same
// directory followed by a rename, so a crash mid-write leaves the previous
// version in place. Appends within one process are serialized and always
// start from the file's current contents. Writers in different processes
// still race: the last rename wins.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"finvision/internal/core"
	"finvision/internal/ledger"
)

// DefaultPath is the backing file used when none is configured.
const DefaultPath = "finance_data.csv"

// Header is the fixed column schema of the backing file.
var Header = []string{"Date", "Type", "Category", "Amount", "Description"}

var ErrBadHeader = errors.New("unexpected csv header")

type Store struct {
	mu   sync.Mutex
	path string
}

// Ensure interface conformance
var _ ledger.Store = (*Store)(nil)

func New(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. Absence, emptiness and parse failures all
// degrade to an empty ledger with a notice.
func (s *Store) Load(ctx context.Context) (ledger.Snapshot, error) {
	return s.read(ctx), nil
}

func (s *Store) read(ctx context.Context) ledger.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "Ledger file not readable", "path", s.path, "error", err)
			return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeUnreadable}
		}
		return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeNoHistory}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeNoHistory}
	}

	l, err := Decode(bytes.NewReader(data))
	if err != nil {
		slog.WarnContext(ctx, "Ledger file could not be parsed, using empty ledger", "path", s.path, "error", err)
		return ledger.Snapshot{Ledger: core.Ledger{}, Notice: ledger.NoticeUnreadable}
	}
	return ledger.Snapshot{Ledger: l}
}

// AppendAndSave re-reads the backing file under the store lock, appends tx
// and rewrites the file. l is only returned on failure; the stored rows are
// the base for the append.
func (s *Store) AppendAndSave(ctx context.Context, l core.Ledger, tx core.Transaction) (core.Ledger, error) {
	if err := tx.Validate(); err != nil {
		return l, fmt.Errorf("validation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.read(ctx).Ledger.Append(tx)
	if err := s.save(ctx, next); err != nil {
		return l, err
	}
	slog.InfoContext(ctx, "Transaction saved to ledger file",
		"path", s.path,
		"date", tx.Date.String(),
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Signed().String(),
		"rows", next.Len())
	return next, nil
}

// Save replaces the backing file with the serialized ledger. Saving an
// unchanged ledger produces a byte-identical file.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, l)
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, l core.Ledger) error {
	if err := s.preserveUnreadable(ctx); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, l); err != nil {
		tmp.Close()
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp ledger file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	committed = true
	return nil
}

// preserveUnreadable moves a non-empty file that does not parse out of the
// way so the next save cannot overwrite history the user never saw.
func (s *Store) preserveUnreadable(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if _, err = Decode(bytes.NewReader(data)); err == nil {
			return nil
		}
	}

	backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("preserve unreadable ledger file: %w", err)
	}
	slog.WarnContext(ctx, "Unreadable ledger file preserved", "path", s.path, "backup", backup)
	return nil
}

// Decode parses a backing file. An input without any record is an empty
// ledger; anything else must start with the fixed header.
func Decode(r io.Reader) (core.Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	first, err := cr.Read()
	if err == io.EOF {
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range Header {
		if strings.TrimSpace(strings.TrimPrefix(first[i], "\ufeff")) != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, first[i], name)
		}
	}

	l := core.Ledger{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return l, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		tx, err := decodeRow(rec)
		if err != nil {
			return nil, fmt.Errorf("parse row %d: %w", line, err)
		}
		l = append(l, tx)
	}
}

func decodeRow(rec []string) (core.Transaction, error) {
	date, err := core.ParseDate(rec[0])
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseType(rec[1])
	if err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.ParseCategory(rec[2])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseSignedAmount(rec[3])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.FromSigned(date, typ, cat, amount, rec[4])
}

// Encode writes the header and one row per transaction, amounts signed with
// two fraction digits.
func Encode(w io.Writer, l core.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, tx := range l {
		row := []string{
			tx.Date.String(),
			string(tx.Type),
			string(tx.Category),
			tx.Signed().String(),
			tx.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
