// Package github implements domain.ProjectAPI on the GitHub GraphQL API
// (Projects v2).
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/runoshun/gh-field-sync/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Ensure Client implements domain.ProjectAPI interface.
var _ domain.ProjectAPI = (*Client)(nil)

// ID is a node id passed as a query variable.
// The GraphQL variable type is derived from the Go type name, so this must
// stay named ID for the query to declare $id:ID!.
type ID string

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client // Base client (nil = http.DefaultClient transport)
	APIURL     string       // GraphQL endpoint (empty = public GitHub)
	Token      string       // Bearer token
	Timeout    time.Duration
}

// Client talks to the GitHub GraphQL API with a single bearer token.
type Client struct {
	gql *githubv4.Client
}

// NewClient creates a Client bound to opts.Token.
func NewClient(opts Options) *Client {
	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	httpClient.Timeout = opts.Timeout

	url := opts.APIURL
	if url == "" {
		url = domain.DefaultAPIURL
	}
	return &Client{gql: githubv4.NewEnterpriseClient(url, httpClient)}
}

// TrackedIssues returns the first page of issues tracked by issueID.
func (c *Client) TrackedIssues(ctx context.Context, issueID domain.IssueID) (*domain.TrackedIssues, error) {
	var q struct {
		Node struct {
			Issue struct {
				TrackedIssues struct {
					Nodes []struct {
						ID string
					}
					PageInfo struct {
						HasNextPage bool
					}
				} `graphql:"trackedIssues(first: $first)"`
			} `graphql:"... on Issue"`
		} `graphql:"node(id: $id)"`
	}
	vars := map[string]any{
		"id":    ID(issueID),
		"first": githubv4.Int(domain.TrackedIssuesPageSize),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("query tracked issues: %w", err)
	}

	tracked := q.Node.Issue.TrackedIssues
	res := &domain.TrackedIssues{
		IDs:     make([]domain.IssueID, 0, len(tracked.Nodes)),
		HasMore: tracked.PageInfo.HasNextPage,
	}
	for _, n := range tracked.Nodes {
		res.IDs = append(res.IDs, domain.IssueID(n.ID))
	}
	return res, nil
}

// FirstProject returns the first project the issue belongs to.
func (c *Client) FirstProject(ctx context.Context, issueID domain.IssueID) (domain.ProjectID, bool, error) {
	var q struct {
		Node struct {
			Issue struct {
				ProjectsV2 struct {
					Nodes []struct {
						ID string
					}
				} `graphql:"projectsV2(first: 1)"`
			} `graphql:"... on Issue"`
		} `graphql:"node(id: $id)"`
	}
	if err := c.gql.Query(ctx, &q, map[string]any{"id": ID(issueID)}); err != nil {
		return "", false, fmt.Errorf("query projects: %w", err)
	}

	nodes := q.Node.Issue.ProjectsV2.Nodes
	if len(nodes) == 0 || nodes[0].ID == "" {
		return "", false, nil
	}
	return domain.ProjectID(nodes[0].ID), true, nil
}

// textFieldValue selects text values only; other field value types decode
// as empty entries and are dropped.
type textFieldValue struct {
	TextValue struct {
		Text  string
		Field struct {
			Common struct {
				ID   string
				Name string
			} `graphql:"... on ProjectV2FieldCommon"`
		}
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
}

// ProjectItems returns the issue's project items with their text fields.
func (c *Client) ProjectItems(ctx context.Context, issueID domain.IssueID) ([]domain.ProjectItem, error) {
	var q struct {
		Node struct {
			Issue struct {
				ProjectItems struct {
					Nodes []struct {
						ID      string
						Project struct {
							ID string
						}
						FieldValues struct {
							Nodes []textFieldValue
						} `graphql:"fieldValues(first: $valuesFirst)"`
					}
				} `graphql:"projectItems(first: $itemsFirst)"`
			} `graphql:"... on Issue"`
		} `graphql:"node(id: $id)"`
	}
	vars := map[string]any{
		"id":          ID(issueID),
		"itemsFirst":  githubv4.Int(domain.ProjectItemsPageSize),
		"valuesFirst": githubv4.Int(domain.FieldValuesPageSize),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("query project items: %w", err)
	}

	nodes := q.Node.Issue.ProjectItems.Nodes
	items := make([]domain.ProjectItem, 0, len(nodes))
	for _, n := range nodes {
		item := domain.ProjectItem{
			ID:        domain.ItemID(n.ID),
			ProjectID: domain.ProjectID(n.Project.ID),
		}
		for _, v := range n.FieldValues.Nodes {
			field := v.TextValue.Field.Common
			if field.Name == "" {
				continue
			}
			item.Fields = append(item.Fields, domain.TextField{
				ID:    domain.FieldID(field.ID),
				Name:  field.Name,
				Value: v.TextValue.Text,
			})
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateTextField sets a text field value on a project item.
func (c *Client) UpdateTextField(ctx context.Context, in domain.UpdateTextFieldInput) (domain.ItemID, error) {
	var m struct {
		UpdateProjectV2ItemFieldValue struct {
			ProjectV2Item struct {
				ID string
			} `graphql:"projectV2Item"`
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}
	text := githubv4.String(in.Value)
	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(string(in.ProjectID)),
		ItemID:    githubv4.ID(string(in.ItemID)),
		FieldID:   githubv4.ID(string(in.FieldID)),
		Value:     githubv4.ProjectV2FieldValue{Text: &text},
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return "", fmt.Errorf("update field value: %w", err)
	}
	return domain.ItemID(m.UpdateProjectV2ItemFieldValue.ProjectV2Item.ID), nil
}

// AddToProject adds an issue to a project. GitHub returns the existing item
// when the issue is already on the board.
func (c *Client) AddToProject(ctx context.Context, project domain.ProjectID, issueID domain.IssueID) (domain.ItemID, error) {
	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(string(project)),
		ContentID: githubv4.ID(string(issueID)),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return "", fmt.Errorf("add project item: %w", err)
	}
	return domain.ItemID(m.AddProjectV2ItemByID.Item.ID), nil
}
