package controllers

import (
	"net/http"
	"strconv"

	"coaching-platform-api/models"
	"coaching-platform-api/services"

	"github.com/gin-gonic/gin"
)

// CreateSubmission creates a new pending submission for the current athlete.
func CreateSubmission(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	type CreateSubmissionRequest struct {
		MediaRef string `json:"media_ref" binding:"required"`
		SkillTag string `json:"skill_tag" binding:"required"`
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	svc := services.NewSubmissionService(getDB(), services.QueueEvents())
	submission, err := svc.Create(userID, req.MediaRef, req.SkillTag)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Submission created successfully",
		"submission": submission,
	})
}

// GetSubmissions lists submissions scoped by role: athletes see their own,
// coaches see their claims, admins see everything.
func GetSubmissions(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	cursor := c.Query("cursor")
	limit, _ := strconv.Atoi(c.Query("limit"))

	svc := services.NewSubmissionService(getDB(), services.QueueEvents())

	var page *services.SubmissionPage
	var err error
	switch roleID {
	case models.RoleAdmin, models.RoleSuperadmin:
		page, err = svc.ListAll(c.Query("status"), c.Query("skill"), cursor, limit)
	case models.RoleCoach:
		page, err = svc.ListByCoach(userID, cursor, limit)
	default:
		page, err = svc.ListByAthlete(userID, cursor, limit)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": page.Submissions,
		"total":       len(page.Submissions),
		"next_cursor": page.NextCursor,
		"has_more":    page.HasMore,
	})
}

// GetSubmission returns a single submission. Only the owning athlete, the
// claiming coach and staff can see it.
func GetSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	svc := services.NewSubmissionService(getDB(), services.QueueEvents())
	submission, err := svc.Get(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	staff := roleID == models.RoleAdmin || roleID == models.RoleSuperadmin
	claimant := submission.CoachID != nil && *submission.CoachID == userID
	if !staff && submission.AthleteID != userID && !claimant {
		respondError(c, services.NewPermissionError("You do not have access to this submission"))
		return
	}

	// Drafts stay invisible to the athlete until published.
	if submission.Review != nil && !submission.Review.IsPublished() && !staff && !claimant {
		submission.Review = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// AdminGetSubmissions lists every submission with optional status and skill
// filters.
func AdminGetSubmissions(c *gin.Context) {
	cursor := c.Query("cursor")
	limit, _ := strconv.Atoi(c.Query("limit"))

	svc := services.NewSubmissionService(getDB(), services.QueueEvents())
	page, err := svc.ListAll(c.Query("status"), c.Query("skill"), cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": page.Submissions,
		"total":       len(page.Submissions),
		"next_cursor": page.NextCursor,
		"has_more":    page.HasMore,
	})
}

// GetSkills returns the active skill catalog used for submission tags.
func GetSkills(c *gin.Context) {
	svc := services.NewSkillService(getDB())
	skills, err := svc.GetSkills()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"skills":  skills,
	})
}
