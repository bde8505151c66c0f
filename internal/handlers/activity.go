package handlers

import (
	"net/http"
	"time"

	"habitlink/internal/services"
	"habitlink/internal/utils"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type ActivityHandler struct {
	activity *services.ActivityService
	xp       *services.XPService
	loc      *time.Location
}

func NewActivityHandler(activity *services.ActivityService, xp *services.XPService, loc *time.Location) *ActivityHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityHandler{activity: activity, xp: xp, loc: loc}
}

// Dashboard shows today's habits, open goals and level progress.
func (h *ActivityHandler) Dashboard(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	habits, err := h.activity.Habits(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	goals, err := h.activity.Goals(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	challenges, err := h.activity.Challenges(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	progress, err := h.xp.Progress(ctx, user.XP)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	logs, err := h.xp.Logs(ctx, user.ID, 10)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"Title":      "Dashboard",
		"User":       user,
		"Progress":   progress,
		"Habits":     habits,
		"Goals":      goals,
		"Challenges": challenges,
		"XPLogs":     logs,
		"DaysSince":  utils.GetDaysSinceJoined(user.CreatedAt),
	})
}

func (h *ActivityHandler) XPHistory(c *gin.Context) {
	user := currentUser(c)
	logs, err := h.xp.Logs(c.Request.Context(), user.ID, 100)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "dashboard/xp.html", gin.H{"Title": "XP history", "XPLogs": logs})
}

func (h *ActivityHandler) CreateHabit(c *gin.Context) {
	user := currentUser(c)
	_, err := h.activity.CreateHabit(c.Request.Context(), user.ID,
		c.PostForm("title"), c.PostForm("description"), utils.StringToInt(c.PostForm("xp_reward")))
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Habit created")
	}
	redirectBack(c, "/dashboard")
}

func (h *ActivityHandler) CompleteHabit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.activity.CompleteHabit(c.Request.Context(), currentUser(c).ID, id)
	h.finish(c, res, err)
}

func (h *ActivityHandler) CreateGoal(c *gin.Context) {
	user := currentUser(c)
	_, err := h.activity.CreateGoal(c.Request.Context(), user.ID,
		c.PostForm("title"), c.PostForm("description"), utils.StringToInt(c.PostForm("xp_reward")))
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Goal created")
	}
	redirectBack(c, "/dashboard")
}

func (h *ActivityHandler) CompleteGoal(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.activity.CompleteGoal(c.Request.Context(), currentUser(c).ID, id)
	h.finish(c, res, err)
}

func (h *ActivityHandler) parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, value, h.loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *ActivityHandler) CreateChallenge(c *gin.Context) {
	user := currentUser(c)
	_, err := h.activity.CreateChallenge(c.Request.Context(), user.ID,
		c.PostForm("title"), c.PostForm("description"), utils.StringToInt(c.PostForm("xp_reward")),
		h.parseDate(c.PostForm("start_date")), h.parseDate(c.PostForm("end_date")))
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "Challenge created")
	}
	redirectBack(c, "/dashboard")
}

func (h *ActivityHandler) JoinChallenge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.activity.JoinChallenge(c.Request.Context(), currentUser(c).ID, id); err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", "You joined the challenge")
	}
	redirectBack(c, "/dashboard")
}

func (h *ActivityHandler) CompleteChallenge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.activity.CompleteChallenge(c.Request.Context(), currentUser(c).ID, id)
	h.finish(c, res, err)
}

// InviteToChallenge answers with JSON, the button lives on a friend's card.
func (h *ActivityHandler) InviteToChallenge(c *gin.Context) {
	challengeID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	recipientID, ok := utils.ParseID(c.Param("user_id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	err := h.activity.InviteToChallenge(c.Request.Context(), challengeID, currentUser(c).ID, recipientID)
	JSONResult(c, err, "Invitation sent", nil)
}

func (h *ActivityHandler) Journal(c *gin.Context) {
	entries, err := h.activity.Journal(c.Request.Context(), currentUser(c).ID, 50)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "journal/list.html", gin.H{"Title": "Journal", "Entries": entries})
}

func (h *ActivityHandler) CreateJournalEntry(c *gin.Context) {
	_, res, err := h.activity.AddJournalEntry(c.Request.Context(), currentUser(c).ID, c.PostForm("title"), c.PostForm("body"))
	if err != nil {
		flashError(c, err)
		c.Redirect(http.StatusFound, "/journal")
		return
	}
	flash(c, "success", res.Message)
	c.Redirect(http.StatusFound, "/journal")
}

// finish reports an XP-earning action as a flash, or as JSON for fetch calls.
func (h *ActivityHandler) finish(c *gin.Context, res *services.CompletionResult, err error) {
	if wantsJSON(c) {
		JSONResult(c, err, messageOf(res), res)
		return
	}
	if err != nil {
		flashError(c, err)
	} else {
		flash(c, "success", res.Message)
	}
	redirectBack(c, "/dashboard")
}

func messageOf(res *services.CompletionResult) string {
	if res == nil {
		return ""
	}
	return res.Message
}

// Home sends members to their dashboard and shows visitors the landing page.
func (h *ActivityHandler) Home(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	Render(c, http.StatusOK, "home.html", gin.H{"Title": "Build better habits, together"})
}
