package utils

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// OpenScan opens a text file for scanning, decompressing based on the
// file name extension (.gz or .sz).  The caller must call the
// returned closer when done.
func OpenScan(fname string) (io.Reader, func(), error) {
	fid, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case strings.HasSuffix(fname, ".gz"):
		gzr, err := gzip.NewReader(fid)
		if err != nil {
			fid.Close()
			return nil, nil, err
		}
		return gzr, func() { gzr.Close(); fid.Close() }, nil
	case strings.HasSuffix(fname, ".sz"):
		return snappy.NewReader(fid), func() { fid.Close() }, nil
	default:
		return fid, func() { fid.Close() }, nil
	}
}

// OpenWrite creates a text file for writing, compressing based on the
// file name extension (.gz or .sz).  The caller must call the
// returned closer when done, and check its error so that buffered
// data is not silently lost.
func OpenWrite(fname string) (io.Writer, func() error, error) {
	fid, err := os.Create(fname)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case strings.HasSuffix(fname, ".gz"):
		gzw := gzip.NewWriter(fid)
		return gzw, func() error {
			if err := gzw.Close(); err != nil {
				fid.Close()
				return err
			}
			return fid.Close()
		}, nil
	case strings.HasSuffix(fname, ".sz"):
		szw := snappy.NewBufferedWriter(fid)
		return szw, func() error {
			if err := szw.Close(); err != nil {
				fid.Close()
				return err
			}
			return fid.Close()
		}, nil
	default:
		return fid, fid.Close, nil
	}
}

// ReadIds reads a file containing one id per line.  Trailing
// whitespace is stripped and blank lines are dropped.  Duplicate ids
// are returned as-is.
func ReadIds(fname string) ([]string, error) {
	rdr, closer, err := OpenScan(fname)
	if err != nil {
		return nil, fmt.Errorf("ReadIds: %v", err)
	}
	defer closer()

	var ids []string
	scanner := bufio.NewScanner(rdr)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ReadIds: %s: %v", fname, err)
	}

	return ids, nil
}

// WriteIds writes one id per line to fname.
func WriteIds(fname string, ids []string) error {
	out, closer, err := OpenWrite(fname)
	if err != nil {
		return fmt.Errorf("WriteIds: %v", err)
	}

	w := bufio.NewWriter(out)
	for _, id := range ids {
		if _, err := w.WriteString(id); err != nil {
			closer()
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			closer()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		closer()
		return err
	}

	return closer()
}
