package event

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strconv"
	"strings"

	"github.com/cdoyle/beacon/internal/project"
)

// pixelIDPrefix marks events recorded through an image request, which never
// carries a body.
const pixelIDPrefix = "img_"

// Assembler builds AccessEvents from request metadata and the resolved
// project configuration.
type Assembler struct {
	clock Clock
}

// NewAssembler constructs an Assembler using the provided clock.
func NewAssembler(clock Clock) *Assembler {
	return &Assembler{clock: clock}
}

// Assemble produces the event row for one qualifying request. body and
// contentType describe the submitted payload and are ignored for pixel
// requests. Assemble never fails: a malformed body yields empty extra
// fields, and missing metadata falls back per Meta's contract.
func (a *Assembler) Assemble(slug string, meta Meta, cfg *project.Config, image bool, body []byte, contentType string) AccessEvent {
	now := a.clock.Now()

	id := meta.TraceID
	if id == "" {
		id = strconv.FormatInt(now.UnixMilli(), 10)
	}

	extras := map[string]string{}
	if image {
		id = pixelIDPrefix + id
	} else {
		extras = projectExtras(cfg, body, contentType)
	}
	for _, name := range cfg.ExtraArgNames {
		if _, ok := extras[name]; !ok {
			extras[name] = ""
		}
	}
	// Marshalling a map[string]string cannot fail.
	extraJSON, _ := json.Marshal(extras)

	ip := meta.IP
	if ip == "" {
		ip = DefaultIP
	}

	return AccessEvent{
		ID:            id,
		Project:       slug,
		Country:       meta.Country,
		Region:        meta.Region,
		City:          meta.City,
		ISP:           meta.ISP,
		Latitude:      meta.Latitude,
		Longitude:     meta.Longitude,
		Referer:       meta.Referer,
		RefererDomain: refererDomain(meta.Referer),
		IP:            ip,
		UserAgent:     meta.UserAgent,
		RequestedAt:   now.UnixMilli(),
		ExtraData:     string(extraJSON),
	}
}

// projectExtras parses the submitted body and projects it onto the
// project's allow-list. Unknown keys are dropped; parse failures leave the
// mapping empty.
func projectExtras(cfg *project.Config, body []byte, contentType string) map[string]string {
	extras := make(map[string]string, len(cfg.ExtraArgNames))
	if len(cfg.ExtraArgNames) == 0 || len(body) == 0 {
		return extras
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return extras
	}
	switch mediaType {
	case "application/x-www-form-urlencoded":
		// Some senders label JSON bodies as form data to dodge the CORS
		// preflight, so JSON gets the first shot.
		submitted, ok := parseJSONBody(body)
		if !ok {
			submitted = parseFormBody(body)
		}
		fillExtras(extras, cfg.ExtraArgNames, submitted)
	case "application/json":
		submitted, _ := parseJSONBody(body)
		fillExtras(extras, cfg.ExtraArgNames, submitted)
	}
	return extras
}

func fillExtras(extras map[string]string, names []string, submitted map[string]string) {
	for _, name := range names {
		extras[name] = submitted[name]
	}
}

func parseJSONBody(body []byte) (map[string]string, bool) {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = stringify(v)
	}
	return out, true
}

func parseFormBody(body []byte) map[string]string {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
