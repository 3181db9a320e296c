package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// defaultOrderLimit caps the orders returned by query_orders.
const defaultOrderLimit = 50

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// EnvironmentsOutput is the output schema for list_environments.
type EnvironmentsOutput struct {
	Environments []EnvironmentOutput `json:"environments"`
	Count        int                 `json:"count"`
}

// EnvironmentOutput describes one environment.
type EnvironmentOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Enabled bool   `json:"enabled"`
}

// CategoriesOutput is the output schema for list_categories.
type CategoriesOutput struct {
	Categories []domain.KeywordCategory `json:"categories"`
}

// ClassifyInput is the input schema for classify_text.
type ClassifyInput struct {
	Text string `json:"text" jsonschema:"free text of an order line, e.g. BYTE BROMSKLOSSAR FRAM"`
}

// ClassifyOutput is the output schema for classify_text.
type ClassifyOutput struct {
	Matched  bool   `json:"matched"`
	Keyword  string `json:"keyword,omitempty"`
	Category string `json:"category,omitempty"`
}

// QueryOrdersInput is the input schema for query_orders.
type QueryOrdersInput struct {
	From         string   `json:"from,omitempty" jsonschema:"start date, YYYY-MM-DD"`
	To           string   `json:"to,omitempty" jsonschema:"end date inclusive, YYYY-MM-DD"`
	Environment  string   `json:"environment,omitempty" jsonschema:"single environment id, e.g. NIE2V"`
	Environments []string `json:"environments,omitempty" jsonschema:"environment ids; all enabled when empty"`
	Plates       []string `json:"plates,omitempty" jsonschema:"registration plates; date range optional"`
	Phones       []string `json:"phones,omitempty" jsonschema:"phone numbers matched against customer, payer and driver"`
	Status       string   `json:"status,omitempty" jsonschema:"order status code, e.g. KON"`
	CustomerType string   `json:"customer_type,omitempty" jsonschema:"Private or Company"`
	Invoiced     *bool    `json:"invoiced,omitempty" jsonschema:"only orders with invoice log entries in range (default true)"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of orders to return (default 50)"`
}

// QueryOrdersOutput is the output schema for query_orders.
type QueryOrdersOutput struct {
	Orders []OrderSummary `json:"orders"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
}

// OrderSummary is a compact view of an enriched order.
type OrderSummary struct {
	Number         int        `json:"number"`
	Environment    string     `json:"environment"`
	Date           *time.Time `json:"date,omitempty"`
	Plate          string     `json:"plate,omitempty"`
	Status         string     `json:"status,omitempty"`
	Customer       string     `json:"customer,omitempty"`
	CustomerType   string     `json:"customer_type,omitempty"`
	Vehicle        string     `json:"vehicle,omitempty"`
	Total          float64    `json:"total_incl_vat"`
	Categories     []string   `json:"categories"`
	LineItems      int        `json:"line_items"`
	Invoices       int        `json:"invoices"`
	TransferErrors int        `json:"transfer_errors"`
	FirstLogAt     *time.Time `json:"first_log_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_environments",
		Description: "List the configured workshop environments and their contact details",
	}, s.handleListEnvironments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List the job categories and the keywords that select them, in match order",
	}, s.handleListCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "classify_text",
		Description: "Classify an order line text into a job category",
	}, s.handleClassify)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_orders",
		Description: "Query enriched workshop orders across environments by date range, plates or phone numbers",
	}, s.handleQueryOrders)
}

func (s *Server) handleListEnvironments(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, EnvironmentsOutput, error) {
	envs := s.ports.Registry.Environments()
	output := EnvironmentsOutput{
		Environments: make([]EnvironmentOutput, len(envs)),
		Count:        len(envs),
	}
	for i, env := range envs {
		output.Environments[i] = EnvironmentOutput{
			ID:      env.ID,
			Name:    env.Facility.Name,
			Email:   env.Facility.Email,
			Phone:   env.Facility.Phone,
			Enabled: env.Enabled,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListCategories(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, CategoriesOutput, error) {
	return nil, CategoriesOutput{Categories: s.ports.Classifier.Categories()}, nil
}

func (s *Server) handleClassify(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassifyInput,
) (*mcp.CallToolResult, ClassifyOutput, error) {
	c := s.ports.Classifier.Classify(input.Text)
	return nil, ClassifyOutput{Matched: c.Matched(), Keyword: c.Keyword, Category: c.Category}, nil
}

func (s *Server) handleQueryOrders(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryOrdersInput,
) (*mcp.CallToolResult, QueryOrdersOutput, error) {
	params := domain.FilterParams{
		From:         input.From,
		To:           input.To,
		Environment:  input.Environment,
		Environments: input.Environments,
		Plates:       input.Plates,
		Phones:       input.Phones,
		Status:       input.Status,
		CustomerType: input.CustomerType,
	}
	filter, err := params.Filter(time.Local)
	if err != nil {
		return nil, QueryOrdersOutput{}, err
	}
	filter.Invoiced = input.Invoiced

	orders, err := s.ports.Orders.Aggregate(ctx, filter)
	if err != nil {
		return nil, QueryOrdersOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultOrderLimit
	}
	shown := orders
	if len(shown) > limit {
		shown = shown[:limit]
	}

	output := QueryOrdersOutput{
		Orders: make([]OrderSummary, len(shown)),
		Count:  len(shown),
		Total:  len(orders),
	}
	for i := range shown {
		output.Orders[i] = summarise(&shown[i])
	}
	return nil, output, nil
}

func summarise(o *domain.Order) OrderSummary {
	sum := OrderSummary{
		Number:       o.Number,
		Environment:  o.Environment,
		Date:         o.Date,
		Plate:        o.Plate,
		Status:       o.Status,
		CustomerType: string(o.CustomerType()),
		Total:        o.TotalInclVAT,
		Categories:   o.Categories,
		LineItems:    len(o.LineItems),
		Invoices:     len(o.Invoices),
	}
	sum.TransferErrors = o.TransferErrors()
	sum.FirstLogAt = o.FirstLogAt
	if sum.Categories == nil {
		sum.Categories = []string{}
	}
	if c := o.Customer; c != nil {
		sum.Customer = c.Name
		if c.CompanyName != "" {
			sum.Customer = c.CompanyName
		} else if c.FirstName != "" {
			sum.Customer = c.FirstName + " " + c.LastName
		}
	}
	if v := o.Vehicle; v != nil {
		sum.Vehicle = joinNonEmpty(v.Make, v.Model)
	}
	return sum
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
