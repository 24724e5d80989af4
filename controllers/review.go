package controllers

import (
	"net/http"

	"coaching-platform-api/services"

	"github.com/gin-gonic/gin"
)

// ClaimSubmission gives the current coach the exclusive right to review a
// pending submission. Exactly one coach wins a contested claim; losers get a
// 409 with code "already_claimed" and should refresh their queue.
func ClaimSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coachID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	submission, err := svc.Claim(submissionID, coachID, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission claimed",
		"submission": submission,
	})
}

// ReleaseSubmission reverts the current coach's claim back to pending.
func ReleaseSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coachID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	submission, err := svc.ReleaseClaim(submissionID, coachID, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Claim released",
		"submission": submission,
	})
}

// DeclineSubmission terminally rejects a submission without a review.
func DeclineSubmission(c *gin.Context) {
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

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	submission, err := svc.Decline(submissionID, userID, roleID, req.Reason, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission declined",
		"submission": submission,
	})
}

// SaveDraftReview upserts the current coach's draft for a claimed
// submission. The payload replaces the previous draft content wholesale.
func SaveDraftReview(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coachID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var content services.ReviewContent
	if err := c.ShouldBindJSON(&content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	review, err := svc.SaveDraftReview(submissionID, coachID, content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Draft saved",
		"review":  review,
	})
}

// PublishReview publishes the coach's draft: review published, submission
// completed and the athlete notified, atomically.
func PublishReview(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	coachID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	review, err := svc.PublishReview(submissionID, coachID, auditMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review published",
		"review":  review,
	})
}

// GetReview returns a review with its scores, annotations and drills,
// subject to draft visibility rules.
func GetReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	roleID, _ := getCurrentRoleID(c)

	svc := services.NewReviewWorkflowService(getDB(), services.QueueEvents())
	review, err := svc.GetReview(reviewID, userID, roleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}
