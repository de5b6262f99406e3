package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veeduria/obras-service/internal/http/middleware"
	"github.com/veeduria/obras-service/internal/model"
	"github.com/veeduria/obras-service/internal/service"
)

type Handler struct {
	additions     *service.AdditionService
	modifications *service.ModificationService
	progress      *service.ProgressService
	statements    *service.StatementService
	log           zerolog.Logger
}

func NewHandler(
	additions *service.AdditionService,
	modifications *service.ModificationService,
	progress *service.ProgressService,
	statements *service.StatementService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		additions:     additions,
		modifications: modifications,
		progress:      progress,
		statements:    statements,
		log:           log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts/:id/additions", h.createAddition)
	protected.GET("/contracts/:id/additions", h.listAdditions)
	protected.PATCH("/additions/:id", h.updateAddition)
	protected.DELETE("/additions/:id", h.deleteAddition)

	protected.POST("/contracts/:id/modifications", h.createModification)
	protected.GET("/contracts/:id/modifications", h.listModifications)
	protected.PATCH("/modifications/:id", h.updateModification)
	protected.DELETE("/modifications/:id", h.deleteModification)

	protected.POST("/contracts/:id/progress", h.createContractProgress)
	protected.GET("/contracts/:id/progress", h.listContractProgress)
	protected.POST("/activities/:id/progress", h.createActivityProgress)
	protected.GET("/activities/:id/progress", h.listActivityProgress)

	protected.GET("/contracts/:id/progress/export", h.exportProgress)
	protected.GET("/contracts/:id/ledger/export", h.exportLedger)
}

type createAdditionRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	EffectiveDate string `json:"effective_date" binding:"required"`
	Note          string `json:"note"`
}

type updateAdditionRequest struct {
	Amount        *int64  `json:"amount"`
	EffectiveDate *string `json:"effective_date"`
	Note          *string `json:"note"`
}

type additionResponse struct {
	ID            uuid.UUID `json:"id"`
	ContractID    uuid.UUID `json:"contract_id"`
	Amount        int64     `json:"amount"`
	EffectiveDate string    `json:"effective_date"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handler) createAddition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req createAdditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective_date"})
		return
	}

	addition, err := h.additions.Create(c.Request.Context(), service.CreateAdditionInput{
		ContractID:    contractID,
		Amount:        req.Amount,
		EffectiveDate: effectiveDate,
		Note:          req.Note,
		Principal:     principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAdditionResponse(*addition))
}

func (h *Handler) updateAddition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	additionID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid addition id"})
		return
	}

	var req updateAdditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateAdditionInput{
		ID:        additionID,
		Amount:    req.Amount,
		Note:      req.Note,
		Principal: principal,
	}
	if req.EffectiveDate != nil {
		effectiveDate, err := parseDate(*req.EffectiveDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective_date"})
			return
		}
		input.EffectiveDate = &effectiveDate
	}

	addition, err := h.additions.Update(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAdditionResponse(*addition))
}

func (h *Handler) deleteAddition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	additionID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid addition id"})
		return
	}

	if err := h.additions.Delete(c.Request.Context(), additionID, principal); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listAdditions(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	additions, err := h.additions.List(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]additionResponse, 0, len(additions))
	for _, a := range additions {
		responses = append(responses, toAdditionResponse(a))
	}
	c.JSON(http.StatusOK, responses)
}

type createModificationRequest struct {
	Kind      string `json:"kind" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Note      string `json:"note"`
}

type updateModificationRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Note      *string `json:"note"`
}

type modificationResponse struct {
	ID           uuid.UUID `json:"id"`
	ContractID   uuid.UUID `json:"contract_id"`
	Kind         string    `json:"kind"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	DurationDays int       `json:"duration_days"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *Handler) createModification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req createModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := parseModificationKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	mod, err := h.modifications.Create(c.Request.Context(), service.CreateModificationInput{
		ContractID: contractID,
		Kind:       kind,
		StartDate:  startDate,
		EndDate:    endDate,
		Note:       req.Note,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toModificationResponse(*mod))
}

func (h *Handler) updateModification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	modificationID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modification id"})
		return
	}

	var req updateModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateModificationInput{
		ID:        modificationID,
		Note:      req.Note,
		Principal: principal,
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		input.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		input.EndDate = &endDate
	}

	mod, err := h.modifications.Update(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toModificationResponse(*mod))
}

func (h *Handler) deleteModification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	modificationID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modification id"})
		return
	}

	if err := h.modifications.Delete(c.Request.Context(), modificationID, principal); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listModifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	mods, err := h.modifications.List(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]modificationResponse, 0, len(mods))
	for _, m := range mods {
		responses = append(responses, toModificationResponse(m))
	}
	c.JSON(http.StatusOK, responses)
}

type createContractProgressRequest struct {
	Value           *int64   `json:"value" binding:"required"`
	PhysicalPercent *float64 `json:"physical_percent" binding:"required"`
	Note            string   `json:"note"`
}

type contractProgressResponse struct {
	ID                         uuid.UUID `json:"id"`
	ContractID                 uuid.UUID `json:"contract_id"`
	Value                      int64     `json:"value"`
	PhysicalPercent            float64   `json:"physical_percent"`
	Note                       string    `json:"note"`
	CreatedAt                  time.Time `json:"created_at"`
	AccumulatedValue           int64     `json:"accumulated_value"`
	AccumulatedPhysicalPercent float64   `json:"accumulated_physical_percent"`
	FinancialPercent           float64   `json:"financial_percent"`
	Delta                      float64   `json:"delta"`
	Status                     string    `json:"status"`
}

func (h *Handler) createContractProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req createContractProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.CreateContractReport(c.Request.Context(), service.CreateContractProgressInput{
		ContractID:      contractID,
		Value:           *req.Value,
		PhysicalPercent: *req.PhysicalPercent,
		Note:            req.Note,
		Principal:       principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toContractProgressResponse(*entry))
}

func (h *Handler) listContractProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	entries, err := h.progress.ListContractReports(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]contractProgressResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toContractProgressResponse(entry))
	}
	c.JSON(http.StatusOK, responses)
}

type createActivityProgressRequest struct {
	Quantity    *float64 `json:"quantity" binding:"required"`
	Cost        *int64   `json:"cost" binding:"required"`
	WorkDone    string   `json:"work_done"`
	WorkPlanned string   `json:"work_planned"`
}

type activityProgressResponse struct {
	ID                  uuid.UUID `json:"id"`
	ActivityID          uuid.UUID `json:"activity_id"`
	Quantity            float64   `json:"quantity"`
	Cost                int64     `json:"cost"`
	WorkDone            string    `json:"work_done"`
	WorkPlanned         string    `json:"work_planned"`
	CreatedAt           time.Time `json:"created_at"`
	AccumulatedQuantity float64   `json:"accumulated_quantity"`
	AccumulatedCost     int64     `json:"accumulated_cost"`
	PhysicalPercent     float64   `json:"physical_percent"`
	FinancialPercent    float64   `json:"financial_percent"`
}

func (h *Handler) createActivityProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	activityID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	var req createActivityProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.CreateActivityReport(c.Request.Context(), service.CreateActivityProgressInput{
		ActivityID:  activityID,
		Quantity:    *req.Quantity,
		Cost:        *req.Cost,
		WorkDone:    req.WorkDone,
		WorkPlanned: req.WorkPlanned,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toActivityProgressResponse(*entry))
}

func (h *Handler) listActivityProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	activityID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	entries, err := h.progress.ListActivityReports(c.Request.Context(), activityID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	responses := make([]activityProgressResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toActivityProgressResponse(entry))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) exportProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.statements.ExportProgress(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) exportLedger(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.statements.ExportLedger(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrCeilingExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOverlappingSuspension):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toAdditionResponse(a model.Addition) additionResponse {
	return additionResponse{
		ID:            a.ID,
		ContractID:    a.ContractID,
		Amount:        a.Amount,
		EffectiveDate: a.EffectiveDate.Format("2006-01-02"),
		Note:          a.Note,
		CreatedAt:     a.CreatedAt,
	}
}

func toModificationResponse(m model.Modification) modificationResponse {
	return modificationResponse{
		ID:           m.ID,
		ContractID:   m.ContractID,
		Kind:         string(m.Kind),
		StartDate:    m.StartDate.Format("2006-01-02"),
		EndDate:      m.EndDate.Format("2006-01-02"),
		DurationDays: m.DurationDays,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}

func toContractProgressResponse(entry model.ContractProgressEntry) contractProgressResponse {
	return contractProgressResponse{
		ID:                         entry.Report.ID,
		ContractID:                 entry.Report.ContractID,
		Value:                      entry.Report.Value,
		PhysicalPercent:            entry.Report.PhysicalPercent,
		Note:                       entry.Report.Note,
		CreatedAt:                  entry.Report.CreatedAt,
		AccumulatedValue:           entry.AccumulatedValue,
		AccumulatedPhysicalPercent: entry.AccumulatedPhysicalPercent,
		FinancialPercent:           entry.FinancialPercent,
		Delta:                      entry.Delta,
		Status:                     string(entry.Status),
	}
}

func toActivityProgressResponse(entry model.ActivityProgressEntry) activityProgressResponse {
	return activityProgressResponse{
		ID:                  entry.Report.ID,
		ActivityID:          entry.Report.ActivityID,
		Quantity:            entry.Report.Quantity,
		Cost:                entry.Report.Cost,
		WorkDone:            entry.Report.WorkDone,
		WorkPlanned:         entry.Report.WorkPlanned,
		CreatedAt:           entry.Report.CreatedAt,
		AccumulatedQuantity: entry.AccumulatedQuantity,
		AccumulatedCost:     entry.AccumulatedCost,
		PhysicalPercent:     entry.PhysicalPercent,
		FinancialPercent:    entry.FinancialPercent,
	}
}

func parseModificationKind(raw string) (model.ModificationKind, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUSPENSION":
		return model.ModificationSuspension, nil
	case "EXTENSION":
		return model.ModificationExtension, nil
	default:
		return "", service.ErrInvalidInput
	}
}

func parseID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
