package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Maximum record line length.  If there are sequences longer than
// this, scanning fails with an error.
const maxline int = 1024 * 1024

// ReadInSeq scans sequencing reads from either a fastq file or a
// text format with one line per read containing id<tab>sequence.
// Compressed inputs (.gz, .sz) are handled transparently.  The
// format is chosen from the file name: anything with ".fastq" or
// ".fq" in it is treated as fastq.
type ReadInSeq struct {

	// The read id (first whitespace-delimited token of the
	// header, without the leading @).
	Name string

	// The read sequence.
	Seq string

	// The quality string.  Empty in text mode.
	Qual string

	header  string
	plus    string
	fastq   bool
	scanner *bufio.Scanner
	closer  func()
	err     error
	lnum    int
}

func NewReadInSeq(fname string) (*ReadInSeq, error) {
	rdr, closer, err := OpenScan(fname)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(rdr)
	sbuf := make([]byte, maxline)
	scanner.Buffer(sbuf, maxline)

	ris := &ReadInSeq{
		fastq:   strings.Contains(fname, ".fastq") || strings.Contains(fname, ".fq"),
		scanner: scanner,
		closer:  closer,
	}

	return ris, nil
}

// Fastq reports whether the input is being parsed as fastq.
func (ris *ReadInSeq) Fastq() bool {
	return ris.fastq
}

// Next advances to the next read, returning false at the end of the
// input or on error.
func (ris *ReadInSeq) Next() bool {
	if ris.err != nil {
		return false
	}
	if ris.fastq {
		return ris.nextFastq()
	}
	return ris.nextText()
}

func (ris *ReadInSeq) nextFastq() bool {
	if !ris.scan() {
		return false
	}
	header := ris.scanner.Text()
	if !strings.HasPrefix(header, "@") {
		ris.err = fmt.Errorf("line %d: malformed fastq header: %q", ris.lnum, header)
		return false
	}

	for _, p := range []*string{&ris.Seq, &ris.plus, &ris.Qual} {
		if !ris.scan() {
			if ris.err == nil {
				ris.err = fmt.Errorf("line %d: truncated fastq record", ris.lnum)
			}
			return false
		}
		*p = ris.scanner.Text()
	}

	toks := strings.Fields(header[1:])
	if len(toks) == 0 {
		ris.err = fmt.Errorf("line %d: fastq header has no read id", ris.lnum-3)
		return false
	}

	ris.header = header
	ris.Name = toks[0]
	return true
}

func (ris *ReadInSeq) nextText() bool {
	for ris.scan() {
		line := strings.TrimRight(ris.scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		toks := strings.SplitN(line, "\t", 2)
		if len(toks) != 2 {
			ris.err = fmt.Errorf("line %d: expected id<tab>sequence: %q", ris.lnum, line)
			return false
		}
		ris.Name = toks[0]
		ris.Seq = toks[1]
		ris.Qual = ""
		return true
	}
	return false
}

func (ris *ReadInSeq) scan() bool {
	if !ris.scanner.Scan() {
		ris.err = ris.scanner.Err()
		return false
	}
	ris.lnum++
	return true
}

// WriteRecord writes the current read to w in the source format.
func (ris *ReadInSeq) WriteRecord(w io.Writer) error {
	var err error
	if ris.fastq {
		_, err = fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", ris.header, ris.Seq, ris.plus, ris.Qual)
	} else {
		_, err = fmt.Fprintf(w, "%s\t%s\n", ris.Name, ris.Seq)
	}
	return err
}

// Err returns the first error encountered while scanning, if any.
func (ris *ReadInSeq) Err() error {
	return ris.err
}

// Close releases the underlying file.
func (ris *ReadInSeq) Close() {
	ris.closer()
}
