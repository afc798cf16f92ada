package noosh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"nooshload/internal/core"
)

const (
	stepVerifyAccount = "verify_account"
	stepCreateProject = "create_project"
)

// Project is the result of a successful create-project call.
type Project struct {
	ID          string
	Name        string
	RedirectURL string
}

// CreateProject creates a project under the session's tenant. This is a
// required step: a non-success status fails the iteration.
func (c *Client) CreateProject(ctx context.Context, session core.Session, projectName string) (Project, error) {
	payload, _ := json.Marshal(map[string]string{
		"projectName": projectName,
		"domain":      c.domain,
	})

	res, err := c.do(ctx, stepCreateProject, "POST",
		c.baseURL+"/nooshenterprise/noosh/cloud/api/project/createProject",
		"application/json", payload, session.Token)
	if err != nil {
		return Project{}, err
	}
	if res.status != 200 && res.status != 201 {
		return Project{}, &StepError{Step: stepCreateProject, StatusCode: res.status, Body: string(res.body)}
	}

	data := gjson.GetBytes(res.body, "data")
	proj := Project{
		ID:          data.Get("projectId").String(),
		Name:        projectName,
		RedirectURL: data.Get("redirectExternalUrl").String(),
	}
	if proj.ID == "" {
		return Project{}, &StepError{Step: stepCreateProject, StatusCode: res.status,
			Body: "response missing data.projectId"}
	}

	c.log.Debug("project created",
		zap.String("projectId", proj.ID),
		zap.String("projectName", projectName))
	return proj, nil
}

// VerifyAccount is an optional diagnostic step against the account-info
// endpoint. On success it returns the account's subject id, which callers
// use to backfill a session whose token did not carry one. Failure is
// reported as a false return, never an error.
func (c *Client) VerifyAccount(ctx context.Context, session core.Session) (subjectID string, ok bool) {
	endpoint := fmt.Sprintf("%s/accountresource/api/account?locale=en_EU&domain=%s",
		c.baseURL, url.QueryEscape(c.domain))

	res, err := c.do(ctx, stepVerifyAccount, "GET", endpoint, "", nil, session.Token)
	if err != nil {
		return "", false
	}
	if res.status != 200 {
		c.log.Warn("account verification failed", zap.Int("status", res.status))
		return "", false
	}

	return gjson.GetBytes(res.body, "userId").String(), true
}
