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
	stepSpecTypes     = "spec_types"
	stepProductDetail = "product_detail"
	stepCreateSpec    = "create_spec"
)

// defaultSpecFormID is the smart-form id every generated spec uses. The
// spec-types lookup is still performed but its result does not feed this id;
// whether it should is an open product question, so the fixed id stands for
// now.
const defaultSpecFormID = "5006606"

// defaultCustomFields is the fixed field set submitted with every generated
// spec, matching the smart-form schema of the default form.
func defaultCustomFields(specName string) map[string]string {
	return map[string]string{
		"SITE_DESIGN_TYPE_7":       "Corporate Website",
		"TECHNOLOGY_11":            "Flash",
		"TARGET_MARKET_8":          "Non-Profit",
		"QUANTITY1":                "123",
		"SITE_DESIGN_TYPE_7_LABEL": "Corporate Website",
		"TECHNOLOGY_11_LABEL":      "Flash",
		"TARGET_MARKET_8_LABEL":    "Non-Profit",
		"CONTENT_OVERVIEW_9":       specName,
	}
}

// SpecResult is the tagged outcome of the best-effort create-spec chain:
// either a created spec or a skip with the reason. Spec creation never fails
// the enclosing iteration.
type SpecResult struct {
	Created    bool
	SpecID     string
	SkipReason string
}

func specCreated(id string) SpecResult {
	return SpecResult{Created: true, SpecID: id}
}

func specSkipped(reason string) SpecResult {
	return SpecResult{SkipReason: reason}
}

// CreateSpec runs the spec-creation chain: look up the tenant's spec types,
// fetch the form's custom-field schema, then submit a spec populated with
// the default field set. Any sub-call failure converts to a skipped result
// with a logged reason.
func (c *Client) CreateSpec(ctx context.Context, session core.Session, projectID, specName string) SpecResult {
	if _, err := c.getSpecTypes(ctx, session, projectID); err != nil {
		c.log.Info("spec creation skipped", zap.String("reason", err.Error()))
		return specSkipped(err.Error())
	}

	if err := c.getProductDetail(ctx, session, defaultSpecFormID); err != nil {
		c.log.Info("spec creation skipped", zap.String("reason", err.Error()))
		return specSkipped(err.Error())
	}

	specID, err := c.submitSpec(ctx, session, projectID, specName)
	if err != nil {
		c.log.Info("spec creation skipped", zap.String("reason", err.Error()))
		return specSkipped(err.Error())
	}

	c.log.Debug("spec created",
		zap.String("specId", specID),
		zap.String("specName", specName))
	return specCreated(specID)
}

// getSpecTypes looks up the spec types configured for the project's tenant.
// The response shape varies: an array, a {data: [...]} wrapper, or a single
// object.
func (c *Client) getSpecTypes(ctx context.Context, session core.Session, projectID string) (string, error) {
	endpoint := fmt.Sprintf("%s/specresource/spec/types?locale=en_EU&domain=%s&projectId=%s&workgroupId=%s",
		c.baseURL, url.QueryEscape(c.domain), url.QueryEscape(projectID), url.QueryEscape(session.WorkgroupID))

	res, err := c.do(ctx, stepSpecTypes, "GET", endpoint, "", nil, session.Token)
	if err != nil {
		return "", err
	}
	if res.status != 200 {
		return "", &StepError{Step: stepSpecTypes, StatusCode: res.status, Body: string(res.body)}
	}

	types := gjson.GetBytes(res.body, "@this")
	if data := gjson.GetBytes(res.body, "data"); data.Exists() {
		types = data
	}

	var first gjson.Result
	if types.IsArray() {
		arr := types.Array()
		if len(arr) == 0 {
			return "", &StepError{Step: stepSpecTypes, StatusCode: res.status, Body: "no spec types found"}
		}
		first = arr[0]
	} else if types.IsObject() {
		first = types
	} else {
		return "", &StepError{Step: stepSpecTypes, StatusCode: res.status, Body: "no spec types found"}
	}

	typeID := first.Get("specTypeId").String()
	if typeID == "" {
		typeID = first.Get("typeId").String()
	}
	if typeID == "" {
		return "", &StepError{Step: stepSpecTypes, StatusCode: res.status, Body: "spec type has no id"}
	}
	return typeID, nil
}

// getProductDetail fetches the custom-field schema for a form.
func (c *Client) getProductDetail(ctx context.Context, session core.Session, specTypeID string) error {
	endpoint := fmt.Sprintf("%s/specresource/product/getProductDetail?locale=en_EU&domain=%s&specTypeId=%s&userId=%s&workgroupId=%s",
		c.baseURL, url.QueryEscape(c.domain), url.QueryEscape(specTypeID),
		url.QueryEscape(session.SubjectID), url.QueryEscape(session.WorkgroupID))

	res, err := c.do(ctx, stepProductDetail, "GET", endpoint, "", nil, session.Token)
	if err != nil {
		return err
	}
	if res.status != 200 {
		return &StepError{Step: stepProductDetail, StatusCode: res.status, Body: string(res.body)}
	}
	return nil
}

func (c *Client) submitSpec(ctx context.Context, session core.Session, projectID, specName string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"typeId":       defaultSpecFormID,
		"customFields": defaultCustomFields(specName),
		"projectId":    projectID,
		"workgroupId":  session.WorkgroupID,
	})

	endpoint := fmt.Sprintf("%s/nooshenterprise/noosh/cloud/api/spec/create?locale=en_EU&domain=%s",
		c.baseURL, url.QueryEscape(c.domain))

	res, err := c.do(ctx, stepCreateSpec, "POST", endpoint, "application/json", payload, session.Token)
	if err != nil {
		return "", err
	}
	if res.status != 200 && res.status != 201 {
		return "", &StepError{Step: stepCreateSpec, StatusCode: res.status, Body: string(res.body)}
	}

	return gjson.GetBytes(res.body, "data.specId").String(), nil
}
