package pdf

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Poppler implements Provider using the poppler CLI tools
// (pdfinfo, pdftotext, pdftoppm).
type Poppler struct {
	pdfInfoPath   string
	pdfToTextPath string
	pdfToPpmPath  string
}

// NewPoppler creates a Poppler provider. Empty paths fall back to the plain
// binary names resolved via PATH.
func NewPoppler(pdfInfoPath, pdfToTextPath, pdfToPpmPath string) *Poppler {
	if pdfInfoPath == "" {
		pdfInfoPath = "pdfinfo"
	}
	if pdfToTextPath == "" {
		pdfToTextPath = "pdftotext"
	}
	if pdfToPpmPath == "" {
		pdfToPpmPath = "pdftoppm"
	}
	return &Poppler{
		pdfInfoPath:   pdfInfoPath,
		pdfToTextPath: pdfToTextPath,
		pdfToPpmPath:  pdfToPpmPath,
	}
}

var _ Provider = (*Poppler)(nil)

func (p *Poppler) run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "pdf: %s failed: %s", bin, stderr.String())
	}
	return stdout.String(), nil
}

// PageCount parses the "Pages:" line of pdfinfo output.
func (p *Poppler) PageCount(ctx context.Context, path string) (int, error) {
	out, err := p.run(ctx, p.pdfInfoPath, path)
	if err != nil {
		return 0, err
	}
	n, ok := parsePageCount(out)
	if !ok {
		return 0, eris.Errorf("pdf: no Pages line in pdfinfo output for %s", path)
	}
	return n, nil
}

// PageSize parses the "Page N size: W x H pts" line of per-page pdfinfo output.
func (p *Poppler) PageSize(ctx context.Context, path string, page int) (float64, float64, error) {
	out, err := p.run(ctx, p.pdfInfoPath, "-f", strconv.Itoa(page), "-l", strconv.Itoa(page), path)
	if err != nil {
		return 0, 0, err
	}
	w, h, ok := parsePageSize(out, page)
	if !ok {
		return 0, 0, eris.Errorf("pdf: no page size in pdfinfo output for %s page %d", path, page)
	}
	return w, h, nil
}

func parsePageCount(out string) (int, bool) {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "Pages:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

func parsePageSize(out string, page int) (float64, float64, bool) {
	for _, line := range strings.Split(out, "\n") {
		// pdfinfo pads the page number, so match on fields rather than a
		// fixed prefix: "Page    1 size: 612 x 792 pts (letter)".
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] != "Page" || fields[2] != "size:" {
			continue
		}
		if fields[1] != strconv.Itoa(page) {
			continue
		}
		w, errW := strconv.ParseFloat(fields[3], 64)
		h, errH := strconv.ParseFloat(fields[5], 64)
		if errW != nil || errH != nil {
			return 0, 0, false
		}
		return w, h, true
	}
	return 0, 0, false
}

// PageText runs pdftotext -layout restricted to a single page.
func (p *Poppler) PageText(ctx context.Context, path string, page int) (string, error) {
	pg := strconv.Itoa(page)
	return p.run(ctx, p.pdfToTextPath,
		"-f", pg, "-l", pg, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
}

// RegionText runs pdftotext with a crop box. Coordinates are truncated to
// integer points, which pdftotext requires.
func (p *Poppler) RegionText(ctx context.Context, path string, page int, x, y, w, h float64) (string, error) {
	pg := strconv.Itoa(page)
	return p.run(ctx, p.pdfToTextPath,
		"-f", pg, "-l", pg,
		"-x", strconv.Itoa(int(x)), "-y", strconv.Itoa(int(y)),
		"-W", strconv.Itoa(int(w)), "-H", strconv.Itoa(int(h)),
		"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
}

// RenderPage rasterizes one page to PNG via pdftoppm in a scratch directory
// and decodes the result.
func (p *Poppler) RenderPage(ctx context.Context, path string, page, dpi int) (image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "bidbook-render-*")
	if err != nil {
		return nil, eris.Wrap(err, "pdf: create render dir")
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	pg := strconv.Itoa(page)
	prefix := filepath.Join(tmpDir, "page")
	if _, err := p.run(ctx, p.pdfToPpmPath,
		"-png", "-r", strconv.Itoa(dpi), "-f", pg, "-l", pg, path, prefix); err != nil {
		return nil, err
	}

	// pdftoppm names output page-N.png with zero padding that depends on the
	// document's total page count, so glob instead of predicting the name.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, eris.Errorf("pdf: pdftoppm produced no image for %s page %d", path, page)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, eris.Wrap(err, "pdf: open rendered page")
	}
	defer f.Close() //nolint:errcheck

	img, err := png.Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "pdf: decode rendered page for %s page %d", path, page)
	}
	return img, nil
}
