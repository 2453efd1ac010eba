package migrations

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const hashPrefix = "h1:"

type (
	// SumFile records a chained SHA256 hash per migration file plus a total
	// hash over all of them. Each file's hash incorporates the previous file's
	// hash, so reordering, editing or removing any file changes every hash
	// after it.
	SumFile struct {
		files     []fileEntry
		TotalHash string // h1:<base64>, computed by WriteTo
	}

	fileEntry struct {
		Name string
		Hash []byte
	}
)

// NewSumFile creates an empty SumFile.
//
// Example:
//
//	sum := migrations.NewSumFile()
//	sum.AddFile("20240101000000_init.sql", content)
//	_, _ = sum.WriteTo(os.Stdout)
func NewSumFile() *SumFile {
	return &SumFile{files: make([]fileEntry, 0)}
}

// LoadSumFile reads a SumFile in the format produced by WriteTo:
//   - First line: total hash (h1:base64)
//   - Following lines: <filename> h1:<base64>
func LoadSumFile(r io.Reader) (*SumFile, error) {
	scanner := bufio.NewScanner(r)
	sum := NewSumFile()

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read total hash line")
		}

		return sum, nil
	}

	total := strings.TrimSpace(scanner.Text())
	if total == "" {
		return sum, nil
	}

	if !strings.HasPrefix(total, hashPrefix) {
		return nil, errors.Errorf("invalid total hash format: %s", total)
	}
	sum.TotalHash = total

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Names may contain spaces; the hash never does.
		idx := strings.LastIndex(line, " ")
		if idx < 0 {
			return nil, errors.Errorf("invalid file entry format: %s", line)
		}

		name, hash := line[:idx], line[idx+1:]
		if !strings.HasPrefix(hash, hashPrefix) {
			return nil, errors.Errorf("invalid hash format for file %s: %s", name, hash)
		}

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(hash, hashPrefix))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode hash for file %s", name)
		}

		sum.files = append(sum.files, fileEntry{Name: name, Hash: raw})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading sum file")
	}

	return sum, nil
}

// AddFile appends a file. Its hash is SHA256(content) for the first file and
// SHA256(content + previous hash) for every file after that.
func (s *SumFile) AddFile(name string, content []byte) {
	hasher := sha256.New()
	hasher.Write(content)

	if len(s.files) > 0 {
		hasher.Write(s.files[len(s.files)-1].Hash)
	}

	s.files = append(s.files, fileEntry{Name: name, Hash: hasher.Sum(nil)})
}

// Files returns the number of files in the sum file.
func (s *SumFile) Files() int {
	return len(s.files)
}

// Names returns the file names in the order they were added.
func (s *SumFile) Names() []string {
	names := make([]string, len(s.files))
	for i, file := range s.files {
		names[i] = file.Name
	}

	return names
}

// Equal reports whether both sum files list the same files with the same
// hashes, in the same order.
func (s *SumFile) Equal(other *SumFile) bool {
	if s == nil || other == nil {
		return s == other
	}

	if len(s.files) != len(other.files) {
		return false
	}

	for i, file := range s.files {
		if file.Name != other.files[i].Name || !bytes.Equal(file.Hash, other.files[i].Hash) {
			return false
		}
	}

	return true
}

// WriteTo writes the sum file, computing the total hash first. It implements
// io.WriterTo.
//
// Example output:
//
//	h1:dG90YWxoYXNoZXhhbXBsZQ==
//	20240101000000_init.sql h1:dGVzdGRhdGE=
//	20240102000000_policies.sql h1:bW9yZXRlc3Q=
func (s *SumFile) WriteTo(w io.Writer) (int64, error) {
	var total int64

	s.computeTotalHash()

	n, err := fmt.Fprintf(w, "%s\n", s.TotalHash)
	if err != nil {
		return total, err
	}
	total += int64(n)

	for _, file := range s.files {
		n, err := fmt.Fprintf(w, "%s %s%s\n", file.Name, hashPrefix, base64.StdEncoding.EncodeToString(file.Hash))
		if err != nil {
			return total, err
		}
		total += int64(n)
	}

	return total, nil
}

func (s *SumFile) computeTotalHash() {
	if len(s.files) == 0 {
		s.TotalHash = ""
		return
	}

	hasher := sha256.New()
	for _, file := range s.files {
		hasher.Write(file.Hash)
	}

	s.TotalHash = hashPrefix + base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}
