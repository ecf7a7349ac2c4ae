// ABOUTME: Campaign endpoints
// ABOUTME: Campaign CRUD, recipient management, draft previews and per-recipient sends
package web

import (
	"net/http"

	"github.com/harperreed/kin/compose"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type campaignRequest struct {
	Title           string `json:"title"`
	SubjectTemplate string `json:"subject_template"`
	BodyTemplate    string `json:"body_template"`
}

func (r *campaignRequest) campaign() *models.Campaign {
	return &models.Campaign{Title: r.Title, SubjectTemplate: r.SubjectTemplate, BodyTemplate: r.BodyTemplate}
}

type recipientsRequest struct {
	PersonIDs []int64 `json:"person_ids"`
}

// campaignDetail always serializes recipients, even when there are none.
type campaignDetail struct {
	*models.Campaign
	Recipients []models.CampaignRecipient `json:"recipients"`
}

type sendResponse struct {
	Success     bool                      `json:"success"`
	Recipient   *models.CampaignRecipient `json:"recipient"`
	Interaction *models.Interaction       `json:"interaction"`
	ComposeURL  string                    `json:"compose_url"`
}

func (s *Server) handleListCampaigns(c echo.Context) error {
	campaigns, err := db.ListCampaigns(c.Request().Context(), s.db, projectID(c), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campaigns)
}

func (s *Server) handleCreateCampaign(c echo.Context) error {
	var req campaignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	campaign := req.campaign()
	if err := db.CreateCampaign(c.Request().Context(), s.db, projectID(c), campaign); err != nil {
		return err
	}
	return created(c, campaign.ID)
}

func (s *Server) handleGetCampaign(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	campaign, err := db.GetCampaign(c.Request().Context(), s.db, projectID(c), id)
	if err != nil {
		return err
	}
	detail := campaignDetail{Campaign: campaign, Recipients: campaign.Recipients}
	if detail.Recipients == nil {
		detail.Recipients = []models.CampaignRecipient{}
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleUpdateCampaign(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req campaignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.UpdateCampaign(c.Request().Context(), s.db, projectID(c), id, req.campaign()); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleDeleteCampaign(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteCampaign(c.Request().Context(), s.db, projectID(c), id); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleSetCampaignStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.SetCampaignStatus(c.Request().Context(), s.db, projectID(c), id, req.Status); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleAddRecipients(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req recipientsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if len(req.PersonIDs) == 0 {
		return models.Invalid("person_ids", "must not be empty")
	}
	added, err := db.AddCampaignRecipients(c.Request().Context(), s.db, projectID(c), id, req.PersonIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "added": added})
}

func (s *Server) handleRemoveRecipient(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	personID, err := idParam(c, "person_id")
	if err != nil {
		return err
	}
	if err := db.RemoveCampaignRecipient(c.Request().Context(), s.db, projectID(c), id, personID); err != nil {
		return err
	}
	return ok(c)
}

// handlePreviewCampaign renders the campaign for one person, or for a
// placeholder name when no person_id is given.
func (s *Server) handlePreviewCampaign(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	personID, err := optionalIntQuery(c, "person_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	pid := projectID(c)
	campaign, err := db.GetCampaign(ctx, s.db, pid, id)
	if err != nil {
		return err
	}

	var draft *compose.Draft
	if personID == nil {
		draft, err = compose.NewPreview(campaign)
	} else {
		person, perr := db.GetPerson(ctx, s.db, pid, *personID)
		if perr != nil {
			return perr
		}
		draft, err = compose.NewDraft(campaign, &models.CampaignRecipient{
			CampaignID: campaign.ID,
			PersonID:   person.ID,
			Name:       person.Name,
			Email:      person.Email,
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, draft)
}

func (s *Server) handleSendCampaign(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	personID, err := idParam(c, "person_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	pid := projectID(c)
	recipient, interaction, err := db.MarkRecipientSent(ctx, s.db, pid, id, personID, s.now())
	if err != nil {
		return err
	}
	if interaction != nil {
		s.metrics.campaignSends.Inc()
		s.logger.Info("campaign recipient sent",
			zap.Int64("project_id", pid),
			zap.Int64("campaign_id", id),
			zap.Int64("person_id", personID),
		)
	}

	resp := sendResponse{Success: true, Recipient: recipient, Interaction: interaction}
	campaign, err := db.GetCampaign(ctx, s.db, pid, id)
	if err != nil {
		return err
	}
	draft, err := compose.NewDraft(campaign, recipient)
	if err != nil {
		return err
	}
	resp.ComposeURL = draft.ComposeURL
	return c.JSON(http.StatusOK, resp)
}
