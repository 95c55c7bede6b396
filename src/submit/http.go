package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"faultline-agent/src/contracts"
	"faultline-agent/src/logger"
)

const defaultSubmitTimeout = 30 * time.Second

// HTTPSubmitter posts reports as JSON to a tracker endpoint. The endpoint's
// response maps onto SubmittedReportInfo; transport failures become a
// failed-status result rather than an error, so the triage flow always gets
// a completion callback.
type HTTPSubmitter struct {
	name        string
	pluginID    contracts.PluginID
	endpoint    string
	credentials CredentialStore
	httpClient  *http.Client
	log         logger.Logger
}

// reportPayload is the wire form of one submitted report.
type reportPayload struct {
	Reporter       string  `json:"reporter"`
	AdditionalInfo string  `json:"additional_info,omitempty"`
	Events         []Event `json:"events"`
}

// reportResponse is the tracker's reply.
type reportResponse struct {
	Status   string `json:"status"`
	URL      string `json:"url,omitempty"`
	LinkText string `json:"link_text,omitempty"`
}

// NewHTTPSubmitter creates a submitter posting to the given endpoint.
// An empty pluginID registers it as the core submitter.
func NewHTTPSubmitter(name string, pluginID contracts.PluginID, endpoint string, credentials CredentialStore, log logger.Logger) *HTTPSubmitter {
	return &HTTPSubmitter{
		name:        name,
		pluginID:    pluginID,
		endpoint:    endpoint,
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: defaultSubmitTimeout,
		},
		log: log,
	}
}

func (s *HTTPSubmitter) Name() string { return s.name }

func (s *HTTPSubmitter) PluginID() contracts.PluginID { return s.pluginID }

// ReporterLabel returns who the report will be attributed to.
func (s *HTTPSubmitter) ReporterLabel() string {
	if username, ok := s.credentials.Username(); ok {
		return username
	}
	return "anonymous"
}

// Submit posts the report from a worker goroutine and reports the outcome
// through onComplete.
func (s *HTTPSubmitter) Submit(ctx context.Context, events []Event, additionalInfo string, onComplete func(contracts.SubmittedReportInfo)) bool {
	if len(events) == 0 || s.endpoint == "" {
		return false
	}

	payload := reportPayload{
		Reporter:       s.ReporterLabel(),
		AdditionalInfo: additionalInfo,
		Events:         events,
	}

	go func() {
		info, err := s.post(ctx, payload)
		if err != nil {
			s.log.Error("report submission failed: %v", err)
			info = contracts.SubmittedReportInfo{Status: contracts.SubmissionFailed}
		}
		onComplete(info)
	}()
	return true
}

func (s *HTTPSubmitter) post(ctx context.Context, payload reportPayload) (contracts.SubmittedReportInfo, error) {
	var info contracts.SubmittedReportInfo

	body, err := json.Marshal(payload)
	if err != nil {
		return info, fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return info, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return info, fmt.Errorf("failed to post report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return info, fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	var reply reportResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return info, fmt.Errorf("failed to decode tracker response: %w", err)
	}

	info.URL = reply.URL
	info.LinkText = reply.LinkText
	switch reply.Status {
	case "duplicate":
		info.Status = contracts.SubmissionDuplicate
	case "failed":
		info.Status = contracts.SubmissionFailed
	default:
		info.Status = contracts.SubmissionNew
	}
	return info, nil
}
