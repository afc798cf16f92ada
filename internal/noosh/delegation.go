package noosh

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"nooshload/internal/core"
	"nooshload/internal/token"
)

// Step names used both as metric labels and in StepErrors. The "step N"
// prefix identifies where in the delegation sequence a failure happened.
const (
	stepClientToken    = "client_token"
	stepDelegateDetail = "oauth_client_detail"
	stepUserToken      = "user_token"
)

// DelegateCredentials is the tenant-scoped OAuth client issued by the
// workgroup endpoint. Valid for the duration of one authentication flow,
// never persisted.
type DelegateCredentials struct {
	ClientID     string
	ClientSecret string
}

// GetDelegatorToken exchanges the platform client credentials for a
// short-lived delegator token (step 1 of the delegation flow).
func (c *Client) GetDelegatorToken(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.oauth.ClientID},
		"client_secret": {c.oauth.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"read"},
	}

	res, err := c.do(ctx, stepClientToken, "POST",
		c.baseURL+"/oauth2jwtauth/oauth/token",
		"application/x-www-form-urlencoded", []byte(form.Encode()), "")
	if err != nil {
		return "", err
	}
	if res.status != 200 {
		return "", &StepError{Step: "step 1: " + stepClientToken, StatusCode: res.status, Body: string(res.body)}
	}

	accessToken := gjson.GetBytes(res.body, "access_token").String()
	if accessToken == "" {
		return "", &StepError{Step: "step 1: " + stepClientToken, StatusCode: res.status,
			Body: "response missing access_token"}
	}

	c.log.Debug("delegator token obtained",
		zap.Int64("expires_in", gjson.GetBytes(res.body, "expires_in").Int()))
	return accessToken, nil
}

// GetTenantDelegate requests the tenant-scoped delegate credentials using
// the delegator token as bearer auth (step 2).
func (c *Client) GetTenantDelegate(ctx context.Context, delegatorToken string) (DelegateCredentials, error) {
	payload, _ := json.Marshal(map[string]string{"workgroupId": c.workgroupID})

	res, err := c.do(ctx, stepDelegateDetail, "POST",
		c.baseURL+"/oauth2jwtauth/workgroup/oauth-client-detail",
		"application/json", payload, delegatorToken)
	if err != nil {
		return DelegateCredentials{}, err
	}
	if res.status != 200 {
		return DelegateCredentials{}, &StepError{Step: "step 2: " + stepDelegateDetail,
			StatusCode: res.status, Body: string(res.body)}
	}

	creds := DelegateCredentials{
		ClientID:     gjson.GetBytes(res.body, "clientId").String(),
		ClientSecret: gjson.GetBytes(res.body, "clientSecretRaw").String(),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return DelegateCredentials{}, &StepError{Step: "step 2: " + stepDelegateDetail,
			StatusCode: res.status, Body: "response missing clientId or clientSecretRaw"}
	}

	c.log.Debug("tenant delegate obtained", zap.String("clientId", creds.ClientID))
	return creds, nil
}

// GetActorToken performs the password-grant exchange against the delegate
// credentials, producing the actor's session token (step 3). The subject id
// is extracted from the token payload best-effort; an empty subject id is
// not an error.
func (c *Client) GetActorToken(ctx context.Context, username, password string, delegate DelegateCredentials) (core.Session, error) {
	form := url.Values{
		"client_id":     {delegate.ClientID},
		"client_secret": {delegate.ClientSecret},
		"grant_type":    {"password"},
		"scope":         {"read"},
		"username":      {username},
		"password":      {password},
	}

	res, err := c.do(ctx, stepUserToken, "POST",
		c.baseURL+"/oauth2jwtauth/oauth/token",
		"application/x-www-form-urlencoded", []byte(form.Encode()), "")
	if err != nil {
		return core.Session{}, err
	}
	if res.status != 200 {
		return core.Session{}, &StepError{Step: "step 3: " + stepUserToken,
			StatusCode: res.status, Body: string(res.body)}
	}

	accessToken := gjson.GetBytes(res.body, "access_token").String()
	if accessToken == "" {
		return core.Session{}, &StepError{Step: "step 3: " + stepUserToken,
			StatusCode: res.status, Body: "response missing access_token"}
	}

	session := core.Session{
		Token:       accessToken,
		SubjectID:   token.DecodeSubjectID(accessToken),
		WorkgroupID: c.workgroupID,
		ExpiresIn:   int(gjson.GetBytes(res.body, "expires_in").Int()),
	}
	if session.SubjectID == "" {
		c.log.Debug("subject id not present in token, will fall back to account lookup",
			zap.String("username", username))
	}
	return session, nil
}

// Authenticate runs the three delegation steps in strict sequence. Any
// step's failure aborts the whole flow; no partial session is returned and
// nothing is retried.
func (c *Client) Authenticate(ctx context.Context, username, password string) (core.Session, error) {
	delegatorToken, err := c.GetDelegatorToken(ctx)
	if err != nil {
		return core.Session{}, err
	}

	delegate, err := c.GetTenantDelegate(ctx, delegatorToken)
	if err != nil {
		return core.Session{}, err
	}

	session, err := c.GetActorToken(ctx, username, password, delegate)
	if err != nil {
		return core.Session{}, err
	}

	c.log.Debug("authentication flow completed",
		zap.String("username", username),
		zap.Bool("subjectResolved", session.SubjectID != ""))
	return session, nil
}
