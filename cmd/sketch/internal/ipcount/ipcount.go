// Package ipcount compares exact and HyperLogLog distinct counts of the IPv4
// addresses found in access logs.
package ipcount

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jcalabro/sketch"
	"github.com/klauspost/compress/gzip"
)

// ipPattern matches IPv4-shaped tokens. Octets are not range checked.
var ipPattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// Extract returns the first IPv4-shaped token in line.
func Extract(line string) (string, bool) {
	ip := ipPattern.FindString(line)
	return ip, ip != ""
}

// Load reads r line by line and returns the first IP of every line that has
// one, in order, duplicates included.
func Load(r io.Reader) ([]string, error) {
	var ips []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if ip, ok := Extract(sc.Text()); ok {
			ips = append(ips, ip)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ipcount: read log: %w", err)
	}
	return ips, nil
}

// Open opens a log file. Files ending in .gz are decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ipcount: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ipcount: open gzip %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return zerr
}

// Method is one row of a Report.
type Method struct {
	Name    string
	Unique  uint64
	Elapsed time.Duration
}

// Report holds the exact and approximate counts for one input.
type Report struct {
	Total       int
	Exact       Method
	Approximate Method
}

// RelativeError returns |approximate - exact| / exact, or 0 for empty input.
func (r Report) RelativeError() float64 {
	if r.Exact.Unique == 0 {
		return 0
	}
	diff := float64(r.Approximate.Unique) - float64(r.Exact.Unique)
	if diff < 0 {
		diff = -diff
	}
	return diff / float64(r.Exact.Unique)
}

// Compare counts the distinct values of ips exactly, with a map, and
// approximately, with an Estimator configured for targetError.
func Compare(ips []string, targetError float64, opts ...sketch.Option) (Report, error) {
	est, err := sketch.NewEstimator(targetError, opts...)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	exact := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		exact[ip] = struct{}{}
	}
	exactElapsed := time.Since(start)

	start = time.Now()
	for _, ip := range ips {
		est.AddString(ip)
	}
	approx := est.Count()
	approxElapsed := time.Since(start)

	return Report{
		Total:       len(ips),
		Exact:       Method{Name: "Exact count", Unique: uint64(len(exact)), Elapsed: exactElapsed},
		Approximate: Method{Name: "HyperLogLog", Unique: approx, Elapsed: approxElapsed},
	}, nil
}

// WriteTable prints the report as an aligned table.
func (r Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Method\tUnique elements\tElapsed (sec)\n")
	for _, m := range []Method{r.Exact, r.Approximate} {
		fmt.Fprintf(tw, "%s\t%s\t%.6f\n", m.Name, humanize.Comma(int64(m.Unique)), m.Elapsed.Seconds())
	}
	return tw.Flush()
}
