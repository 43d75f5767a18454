package synonym

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultURL     = "https://api.datamuse.com/words"
	DefaultTimeout = 5 * time.Second
)

var ErrBadStatus = errors.New("unexpected status from synonym service")

// Datamuse queries a Datamuse compatible words endpoint with rel_syn.
type Datamuse struct {
	baseURL string
	client  *http.Client
}

type datamuseWord struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// NewDatamuse returns a Source backed by baseURL. A zero timeout means
// DefaultTimeout.
func NewDatamuse(baseURL string, timeout time.Duration) *Datamuse {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Datamuse{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *Datamuse) Synonyms(ctx context.Context, term string, max int) ([]string, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid synonym service URL %q: %w", d.baseURL, err)
	}
	values := u.Query()
	values.Set("rel_syn", term)
	values.Set("max", strconv.Itoa(max))
	u.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request to synonym service: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling synonym service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var words []datamuseWord
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, fmt.Errorf("error decoding response from synonym service: %w", err)
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Word)
	}

	return out, nil
}
