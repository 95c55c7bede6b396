package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"faultline-agent/src/attribution"
	"faultline-agent/src/capture"
	"faultline-agent/src/contracts"
	"faultline-agent/src/devinfo"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/submit"
	"faultline-agent/src/triage"
)

// submitTimeout bounds how long a submit_group call waits for the report
// endpoint before giving up.
const submitTimeout = 60 * time.Second

// Server is the MCP server for faultline.
type Server struct {
	mcpServer  *server.MCPServer
	pool       pool.Pool
	hasher     *fingerprint.Hasher
	resolver   *attribution.Resolver
	plugins    contracts.PluginRegistry
	submitters *submit.Registry
	log        logger.Logger

	developers *devinfo.Cache
	devFetcher devinfo.Fetcher
	announce   *capture.Publisher
}

// NewServer creates a new MCP server over the given pool. Each tool call
// builds its own triage session, so the pool may be fed concurrently by an
// ingestion agent.
func NewServer(p pool.Pool, hasher *fingerprint.Hasher, resolver *attribution.Resolver, plugins contracts.PluginRegistry, submitters *submit.Registry, log logger.Logger) *Server {
	s := server.NewMCPServer(
		"faultline",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:  s,
		pool:       p,
		hasher:     hasher,
		resolver:   resolver,
		plugins:    plugins,
		submitters: submitters,
		log:        log,
	}
	srv.registerTools()

	return srv
}

// WithDeveloperDirectory enables the developer tools backed by the given
// cache. fetcher may be nil, which leaves assignee lookups unavailable.
func (s *Server) WithDeveloperDirectory(cache *devinfo.Cache, fetcher devinfo.Fetcher) *Server {
	s.developers = cache
	s.devFetcher = fetcher
	return s
}

// WithAnnouncer broadcasts completed submissions through the given
// publisher, for distributed deployments where other agents watch the
// submitted-reports topic.
func (s *Server) WithAnnouncer(p *capture.Publisher) *Server {
	s.announce = p
	return s
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_error_groups",
		mcp.WithDescription("List the deduplicated error groups currently in the pool. Each group collapses repeated occurrences of the same failure and names the plugin it is attributed to. Use get_group_details to drill into one group."),
		mcp.WithBoolean("include_read",
			mcp.Description("Include groups already marked read (default: true)"),
		),
	)

	detailsTool := mcp.NewTool("get_group_details",
		mcp.WithDescription("Get full details for one error group: attribution, status, and every occurrence with its stack trace, newest first."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Group key from list_error_groups"),
		),
	)

	submitTool := mcp.NewTool("submit_group",
		mcp.WithDescription("Submit an error group to the report endpoint and return the tracker result. Fails when the group has no responsible submitter or was already submitted."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Group key from list_error_groups"),
		),
		mcp.WithString("comment",
			mcp.Description("Additional information to attach to the report"),
		),
	)

	clearTool := mcp.NewTool("clear_errors",
		mcp.WithDescription("Remove every error from the pool and re-arm the overflow guard."),
	)

	developersTool := mcp.NewTool("list_developers",
		mcp.WithDescription("List the tracker's assignable developers. The directory is fetched once and cached."),
	)

	assignTool := mcp.NewTool("assign_group",
		mcp.WithDescription("Assign an error group to a developer from list_developers."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Group key from list_error_groups"),
		),
		mcp.WithNumber("developer_id",
			mcp.Required(),
			mcp.Description("Developer ID from list_developers"),
		),
	)

	s.mcpServer.AddTool(listTool, s.handleListGroups)
	s.mcpServer.AddTool(detailsTool, s.handleGroupDetails)
	s.mcpServer.AddTool(submitTool, s.handleSubmitGroup)
	s.mcpServer.AddTool(clearTool, s.handleClearErrors)
	s.mcpServer.AddTool(developersTool, s.handleListDevelopers)
	s.mcpServer.AddTool(assignTool, s.handleAssignGroup)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// newSession snapshots the pool for one tool call.
func (s *Server) newSession() *triage.Session {
	session := triage.NewSession(s.pool, s.hasher, s.resolver, s.plugins, s.submitters, s.log, nil)
	session.SetAnnouncer(s.announce)
	return session
}

// handleListGroups handles the list_error_groups tool call.
func (s *Server) handleListGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeRead := request.GetBool("include_read", true)

	session := s.newSession()
	manifest := buildManifest(session, includeRead)

	return marshalResult(manifest)
}

// handleGroupDetails handles the get_group_details tool call.
func (s *Server) handleGroupDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key parameter is required"), nil
	}

	session := s.newSession()
	details, found := groupDetails(session, key)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("group not found: %s", key)), nil
	}

	return marshalResult(details)
}

// handleSubmitGroup handles the submit_group tool call. The submitter's
// completion callback fires on a worker goroutine; this handler owns the
// session, so it blocks on the result and applies it here.
func (s *Server) handleSubmitGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key parameter is required"), nil
	}

	session := s.newSession()
	if !selectGroup(session, key) {
		return mcp.NewToolResultError(fmt.Sprintf("group not found: %s", key)), nil
	}

	if comment := request.GetString("comment", ""); comment != "" {
		session.SetAdditionalInfo(comment)
	}
	if !session.CanSubmitSelected() {
		if notice, ok := session.ForeignPluginNotice(); ok {
			return mcp.NewToolResultError(notice), nil
		}
		return mcp.NewToolResultError("group cannot be submitted"), nil
	}

	done := make(chan contracts.SubmittedReportInfo, 1)
	record := session.Selected()
	started := session.SubmitSelected(ctx, func(_ *contracts.ErrorRecord, info contracts.SubmittedReportInfo) {
		done <- info
	})
	if !started {
		return mcp.NewToolResultError("submission did not start"), nil
	}

	select {
	case info := <-done:
		session.ApplySubmission(record, info)
		result := SubmissionResult{
			Key:      key,
			Status:   string(info.Status),
			URL:      info.URL,
			LinkText: info.LinkText,
		}
		return marshalResult(result)
	case <-time.After(submitTimeout):
		return mcp.NewToolResultError("submission timed out"), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleListDevelopers handles the list_developers tool call. The first
// call triggers the directory fetch and waits for it; later calls hit the
// cache. A concurrent fetch started elsewhere is reported rather than
// duplicated.
func (s *Server) handleListDevelopers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.developers == nil || s.devFetcher == nil {
		return mcp.NewToolResultError("developer directory is not configured"), nil
	}

	if s.developers.Loaded() {
		return marshalResult(s.developers.Developers())
	}

	done := make(chan error, 1)
	started := s.developers.Load(ctx, s.devFetcher, s.log, func(_ []devinfo.Developer, err error) {
		done <- err
	})
	if !started {
		if s.developers.Loaded() {
			return marshalResult(s.developers.Developers())
		}
		return mcp.NewToolResultError("directory fetch already in flight; retry shortly"), nil
	}

	select {
	case err := <-done:
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to fetch developers: %v", err)), nil
		}
		return marshalResult(s.developers.Developers())
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleAssignGroup handles the assign_group tool call.
func (s *Server) handleAssignGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("key parameter is required"), nil
	}
	developerID := request.GetInt("developer_id", 0)
	if developerID == 0 {
		return mcp.NewToolResultError("developer_id parameter is required"), nil
	}

	if s.developers != nil && s.developers.Loaded() {
		if !knownDeveloper(s.developers.Developers(), developerID) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown developer: %d", developerID)), nil
		}
	}

	session := s.newSession()
	if !selectGroup(session, key) {
		return mcp.NewToolResultError(fmt.Sprintf("group not found: %s", key)), nil
	}
	session.SetAssignee(fmt.Sprintf("%d", developerID))

	return mcp.NewToolResultText(fmt.Sprintf("group %s assigned to developer %d", key, developerID)), nil
}

func knownDeveloper(devs []devinfo.Developer, id int) bool {
	for _, d := range devs {
		if d.ID == id {
			return true
		}
	}
	return false
}

// handleClearErrors handles the clear_errors tool call.
func (s *Server) handleClearErrors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.pool.ClearFatals()
	return mcp.NewToolResultText("error pool cleared"), nil
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
