package netsim

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"shellquest/internal/vfs"
	"shellquest/internal/vpath"
)

// Page is one simulated HTTP response.
type Page struct {
	URL      string
	Host     string
	Address  string
	Path     string
	Filename string // download name derived from the URL path
	Body     string
	Port     int
}

// Fetch resolves rawurl and returns its simulated page. A missing
// scheme defaults to http.
func (s *Simulator) Fetch(rawurl string) (Page, error) {
	u := rawurl
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return Page{}, fmt.Errorf("malformed url %q", rawurl)
	}
	res, err := s.Resolve(parsed.Hostname())
	if err != nil {
		return Page{}, err
	}

	body := ""
	if h, ok := s.pinned(res.Host); ok && h.Body != "" {
		body = h.Body
	} else {
		body = defaultBody(res)
	}

	name := path.Base(parsed.Path)
	if name == "/" || name == "." || name == "" {
		name = "index.html"
	}
	port := 80
	if parsed.Scheme == "https" {
		port = 443
	}
	return Page{
		URL:      u,
		Host:     res.Host,
		Address:  res.Address,
		Path:     parsed.Path,
		Filename: name,
		Body:     body,
		Port:     port,
	}, nil
}

// Download fetches rawurl and writes the body into the filesystem at
// cwd, wget style. An existing filename gets a numeric suffix instead
// of being overwritten.
func (s *Simulator) Download(fs *vfs.FS, cwd, rawurl string) ([]string, error) {
	page, err := s.Fetch(rawurl)
	if err != nil {
		return nil, err
	}

	name := page.Filename
	target := vpath.Resolve(cwd, name)
	for i := 1; fs.Exists(target); i++ {
		name = fmt.Sprintf("%s.%d", page.Filename, i)
		target = vpath.Resolve(cwd, name)
	}
	if err := fs.WriteFile(target, page.Body); err != nil {
		return nil, err
	}

	n := len(page.Body)
	return []string{
		fmt.Sprintf("Resolving %s (%s)... %s", page.Host, page.Host, page.Address),
		fmt.Sprintf("Connecting to %s (%s)|%s|:%d... connected.", page.Host, page.Host, page.Address, page.Port),
		"HTTP request sent, awaiting response... 200 OK",
		fmt.Sprintf("Length: %d [text/html]", n),
		fmt.Sprintf("Saving to: '%s'", name),
		"",
		fmt.Sprintf("'%s' saved [%d/%d]", name, n, n),
	}, nil
}

// SSH simulates a login session against target ([user@]host). No
// transport exists; the outcome is a fixed connect/banner/close
// transcript.
func (s *Simulator) SSH(target string) ([]string, error) {
	res, err := s.Resolve(stripUser(target))
	if err != nil {
		return nil, err
	}
	lines := []string{
		fmt.Sprintf("Connecting to %s (%s)...", res.Host, res.Address),
		fmt.Sprintf("Connected to %s.", res.Host),
	}
	if h, ok := s.pinned(res.Host); ok && h.Banner != "" {
		lines = append(lines, h.Banner)
	}
	return append(lines, fmt.Sprintf("Connection to %s closed.", res.Host)), nil
}

// SCP simulates a secure copy. Exactly one side must be remote in
// host:path form. Remote-to-local writes the payload into the
// filesystem; local-to-remote reads the local source and writes
// nothing anywhere.
func (s *Simulator) SCP(fs *vfs.FS, cwd, src, dst string) ([]string, error) {
	srcHost, srcPath, srcRemote := splitRemote(src)
	dstHost, _, dstRemote := splitRemote(dst)

	switch {
	case srcRemote && dstRemote:
		return nil, errors.New("remote to remote copies are not supported")

	case !srcRemote && !dstRemote:
		return nil, errors.New("source or destination must be remote (host:path)")

	case srcRemote:
		res, err := s.Resolve(stripUser(srcHost))
		if err != nil {
			return nil, err
		}
		if srcPath == "" {
			return nil, fmt.Errorf("%s: missing remote file path", src)
		}
		payload := fmt.Sprintf("simulated contents of %s:%s\n", res.Host, srcPath)
		if h, ok := s.pinned(res.Host); ok && h.Body != "" {
			payload = h.Body
		}
		name := vpath.Base(vpath.Normalize("/" + srcPath))
		target := vpath.Resolve(cwd, dst)
		if fs.IsDir(target) {
			target = vpath.Join(target, name)
		}
		if err := fs.WriteFile(target, payload); err != nil {
			return nil, err
		}
		return []string{progressLine(name, len(payload))}, nil

	default: // local source, remote destination
		resolved := vpath.Resolve(cwd, src)
		content, err := fs.ReadFile(resolved)
		if err != nil {
			return nil, err
		}
		if _, err := s.Resolve(stripUser(dstHost)); err != nil {
			return nil, err
		}
		return []string{progressLine(vpath.Base(resolved), len(content))}, nil
	}
}

// splitRemote detects scp's host:path form. A colon that appears after
// a slash belongs to a local path, not a host.
func splitRemote(arg string) (host, rest string, remote bool) {
	idx := strings.Index(arg, ":")
	if idx < 0 || strings.Contains(arg[:idx], "/") {
		return "", arg, false
	}
	return arg[:idx], arg[idx+1:], true
}

func stripUser(target string) string {
	if _, host, ok := strings.Cut(target, "@"); ok {
		return host
	}
	return target
}

func progressLine(name string, size int) string {
	return fmt.Sprintf("%-32s 100%% %8s %9s/s   00:00", name, human(size), human(size))
}

func human(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%.1fKB", float64(n)/1024)
}

func defaultBody(res Resolution) string {
	return fmt.Sprintf(`<!doctype html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s</h1>
<p>Simulated endpoint at %s.</p>
</body>
</html>
`, res.Host, res.Host, res.Address)
}
