package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/rocks-admin/pkg/buildinfo"
	"github.com/matzehuels/rocks-admin/pkg/deptree"
	"github.com/matzehuels/rocks-admin/pkg/errors"
	"github.com/matzehuels/rocks-admin/pkg/manifest"
)

// LatestVersion is the {version} path value selecting the latest version.
const LatestVersion = "latest"

type versionJSON struct {
	Version string   `json:"version"`
	Kind    string   `json:"kind"`
	Arches  []string `json:"arches"`
}

type packageJSON struct {
	Name     string        `json:"name"`
	PURL     string        `json:"purl"`
	Latest   string        `json:"latest,omitempty"`
	Versions []versionJSON `json:"versions"`
}

type errorJSON struct {
	Error       string   `json:"error"`
	Code        string   `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func newPackageJSON(p *manifest.Package) packageJSON {
	out := packageJSON{Name: p.Name, PURL: deptree.PURL(p.Name, ""), Versions: []versionJSON{}}
	if v, ok := p.Latest(); ok {
		out.Latest = v.String()
	}
	for _, v := range p.Versions() {
		arches := p.Arches(v)
		if arches == nil {
			arches = []string{}
		}
		out.Versions = append(out.Versions, versionJSON{Version: v.String(), Kind: v.Kind().String(), Arches: arches})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	m, err := s.backend.Manifest(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	out := make([]packageJSON, 0, len(m.Packages))
	for _, p := range m.Packages {
		out = append(out, newPackageJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidatePackageName(name); err != nil {
		writeError(w, err, nil)
		return
	}
	m, err := s.backend.Manifest(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	p, ok := m.Search(name)
	if !ok {
		err := errors.New(errors.ErrCodePackageNotFound, "package %s not found", name)
		writeError(w, err, m.Suggest(name, manifest.DefaultSuggestions, manifest.DefaultCutoff))
		return
	}
	writeJSON(w, http.StatusOK, newPackageJSON(p))
}

// resolver fetches the manifest and parses the {name}/{version} target.
func (s *Server) resolver(r *http.Request, opts deptree.Options) (*deptree.Resolver, deptree.Target, error) {
	t := deptree.Target{Name: chi.URLParam(r, "name"), Version: chi.URLParam(r, "version")}
	if t.Version == LatestVersion {
		t.Version = ""
	}
	if err := errors.ValidatePackageName(t.Name); err != nil {
		return nil, t, err
	}
	if t.Version != "" {
		if err := errors.ValidateVersion(t.Version); err != nil {
			return nil, t, err
		}
	}
	m, err := s.backend.Manifest(r.Context())
	if err != nil {
		return nil, t, err
	}
	return deptree.New(s.backend, m, opts), t, nil
}

func (s *Server) handleRockspec(w http.ResponseWriter, r *http.Request) {
	res, t, err := s.resolver(r, s.opts.Resolve)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	text, _, err := res.RootText(r.Context(), t)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	w.Header().Set("Content-Type", "text/x-lua; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (s *Server) handleDeptree(w http.ResponseWriter, r *http.Request) {
	opts := s.opts.Resolve
	if arch := r.URL.Query().Get("arch"); arch != "" {
		opts.Arch = arch
	}
	res, t, err := s.resolver(r, opts)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	spec, err := res.Root(r.Context(), t)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	tree, err := deptree.Collect(spec.Package, spec.Version, res.Walk(r.Context(), spec))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*deptree.Tree
		Stats deptree.Stats `json:"stats"`
	}{tree, tree.Stats()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error, suggestions []string) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorJSON{
		Error:       errors.UserMessage(err),
		Code:        string(code),
		Suggestions: suggestions,
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodePackageNotFound, errors.ErrCodeVersionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidVersion:
		return http.StatusBadRequest
	case errors.ErrCodeFetch, errors.ErrCodeParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
