package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every matching pair of face-down cards before the 30 second clock or the move budget runs out.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Show the board (face-down cards appear as ??)
- flip_card: Turn over one card - requires intent explanation
- new_game: Deal a fresh board, optionally with a different size
- flip_history: View past flips
- describe_card: Inspect a single card
- list_configs: List available board sizes
- game_instructions: Get the full rules

NOTE: After a mismatch the board stays locked for about a second. Call game_state before flipping again.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional board preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, e.g. tiny, small, medium, large, huge (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score, moves left and time left",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_card",
		Description: "Turn over one face-down card. The first flip starts the 30 second clock.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the card to flip (0-based, as shown on the board)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "What you expect this card to be and why you chose it",
				},
			},
			Required: []string{"session_id", "card_id", "intent"},
		},
	}, c.handleFlipCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Deal a fresh board. Pass config_id or pair_count to change the size; otherwise the current size is kept.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to switch to (optional)",
				},
				"pair_count": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of pairs, one of %v (optional)", engine.AllowedPairCounts),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "flip_history",
		Description: "Get paginated flip history for the current game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page (default 20)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleFlipHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_card",
		Description: "Describe one card: whether it is face up, matched or selected, and its value if visible",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"card_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the card",
				},
			},
			Required: []string{"session_id", "card_id"},
		},
	}, c.handleDescribeCard)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and tips for playing through this interface",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a numeric argument. JSON numbers decode as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Finished {
			status = string(s.GameState.Outcome)
		}
		result += fmt.Sprintf("- %s (Config: %s, %s, Created: %s)\n",
			s.ID, s.ConfigID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleFlipCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cardID, ok := intArg(args, "card_id")
	if !ok {
		return mcp.NewToolResultError("card_id is required"), nil
	}

	intent, _ := args["intent"].(string)
	log.Debug().Str("session_id", sessionID).Int("card_id", cardID).Str("intent", intent).Msg("flip_card")

	var result service.FlipResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/flip", sessionID), map[string]int{"card_id": cardID}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFlipResult(&result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if pairs, ok := intArg(args, "pair_count"); ok && pairs != 0 {
		body["pair_count"] = pairs
	}

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/new-game", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game dealt.\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleFlipHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := "?order=asc&"
	if page, ok := intArg(args, "page"); ok {
		params += fmt.Sprintf("page=%d&", page)
	}
	if limit, ok := intArg(args, "limit"); ok {
		params += fmt.Sprintf("limit=%d&", limit)
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cardID, ok := intArg(args, "card_id")
	if !ok {
		return mcp.NewToolResultError("card_id is required"), nil
	}

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	for pos, card := range state.Cards {
		if card.ID == cardID {
			return mcp.NewToolResultText(describeCard(pos, boardColumns(len(state.Cards)), card)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("card %d is not on the board (valid IDs are 0-%d)", cardID, len(state.Cards)-1)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s - %s\n  %s\n  Move limit: %d\n\n",
			config.ConfigID, config.Label, config.Description, config.MoveLimit)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Find every pair of matching cards. Cards start face down and show their symbol only while turned over.

RULES:
• Flip two cards per turn. A match stays face up and scores 1 point.
• A mismatch turns both cards back over after about a second. The board is locked until then.
• The clock starts at %d seconds on your first flip.
• A board of N pairs allows 2N+2 flips.
• Win: all pairs found. Finding the last pair wins even on the final allowed flip.
• Lose: the clock reaches 0, or you use up your flips without clearing the board.

BOARD SIZES:
%s

READING THE BOARD:
  [ 3:?? ]   card 3, face down
  [ 3:🍎 ]   card 3, face up this turn
  [ 3=🍎 ]   card 3, matched

TIPS:
• Use game_state after a mismatch; flips sent while the board is locked are rejected.
• Rejected flips (locked board, matched card, same card twice) cost nothing.
• Keep track of every symbol you have seen: flip_history lists all values revealed so far.
• Use new_game to start over at any time, with the same or a different size.
`, engine.StartingSeconds, formatPresetMenu())

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatPresetMenu() string {
	var b strings.Builder
	for _, n := range engine.AllowedPairCounts {
		fmt.Fprintf(&b, "  %s, %d flips\n", engine.PairLabel(n), engine.MoveLimit(n))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n",
		session.ID, session.ConfigID,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	return result + formatGameState(session.GameState)
}

// boardColumns picks a grid width for n cards
func boardColumns(n int) int {
	if n <= 16 {
		return 4
	}
	return n / 4
}

func formatCard(card engine.CardView) string {
	switch {
	case card.Matched:
		return fmt.Sprintf("[%2d=%s ]", card.ID, card.Value)
	case card.FaceUp:
		return fmt.Sprintf("[%2d:%s ]", card.ID, card.Value)
	default:
		return fmt.Sprintf("[%2d:?? ]", card.ID)
	}
}

func formatBoard(cards []engine.CardView) string {
	cols := boardColumns(len(cards))
	var b strings.Builder
	for i, card := range cards {
		b.WriteString(formatCard(card))
		if (i+1)%cols == 0 || i == len(cards)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state: unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s (%s)\n", state.ConfigName, engine.PairLabel(state.PairCount))
	fmt.Fprintf(&b, "Score: %d/%d | Moves: %d/%d | Time left: %ds\n",
		state.Score, state.PairCount, state.Moves, state.MoveLimit, state.SecondsRemaining)

	switch {
	case state.Finished:
		fmt.Fprintf(&b, "Status: GAME OVER (%s)\n", state.Outcome)
	case state.Locked:
		b.WriteString("Status: locked, wait for the cards to turn back over\n")
	case !state.Started:
		b.WriteString("Status: ready, the clock starts on your first flip\n")
	default:
		b.WriteString("Status: in progress\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\n")
	b.WriteString(formatBoard(state.Cards))
	return b.String()
}

func formatFlipResult(result *service.FlipResult) string {
	var b strings.Builder
	if result.Accepted {
		fmt.Fprintf(&b, "Flipped card %d.\n", result.CardID)
	} else {
		fmt.Fprintf(&b, "Flip of card %d rejected: %s\n", result.CardID, result.Message)
	}
	for _, event := range result.Events {
		if event.Type == service.EventRejected {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", event.Type, event.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// describeCard reports a card and its grid position
func describeCard(pos, cols int, card engine.CardView) string {
	where := fmt.Sprintf("row %d, column %d", pos/cols+1, pos%cols+1)
	switch {
	case card.Matched:
		return fmt.Sprintf("Card %d (%s): %s, matched", card.ID, where, card.Value)
	case card.FaceUp:
		return fmt.Sprintf("Card %d (%s): %s, face up (waiting for its partner)", card.ID, where, card.Value)
	default:
		return fmt.Sprintf("Card %d (%s): face down", card.ID, where)
	}
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Flip History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		result += fmt.Sprintf("%d. card %d -> %s (%s)\n",
			move.MoveNumber, move.CardID, move.Value, move.Result)
	}
	if len(history.Moves) == 0 {
		result += "(no flips yet)\n"
	}

	return result
}
