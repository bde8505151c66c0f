package handlers

import (
	"net/http"
	"strings"

	"habitlink/internal/middleware"
	"habitlink/internal/models"
	"habitlink/internal/services"
	"habitlink/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	friends     *services.FriendService
	profiles    *services.ProfileService
	leaderboard *services.LeaderboardService
}

func NewCommunityHandler(friends *services.FriendService, profiles *services.ProfileService, leaderboard *services.LeaderboardService) *CommunityHandler {
	return &CommunityHandler{friends: friends, profiles: profiles, leaderboard: leaderboard}
}

// Index lists friends, pending requests and, with ?q=, search results.
func (h *CommunityHandler) Index(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()

	friends, err := h.friends.GetFriends(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	incoming, err := h.friends.GetIncomingFriendRequests(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	outgoing, err := h.friends.GetOutgoingFriendRequests(ctx, user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	var results []models.User
	if query != "" {
		if results, err = h.profiles.SearchUsers(ctx, query, user.ID); err != nil {
			RenderAppError(c, err)
			return
		}
	}

	Render(c, http.StatusOK, "community/index.html", gin.H{
		"Title":    "Community",
		"Friends":  friends,
		"Incoming": incoming,
		"Outgoing": outgoing,
		"Query":    query,
		"Results":  results,
	})
}

// Search answers the live search box with JSON.
func (h *CommunityHandler) Search(c *gin.Context) {
	users, err := h.profiles.SearchUsers(c.Request.Context(), c.Query("q"), currentUser(c).ID)
	if err != nil {
		JSONResult(c, err, "", nil)
		return
	}
	type hit struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
		Level    int    `json:"level"`
	}
	out := make([]hit, 0, len(users))
	for _, u := range users {
		out = append(out, hit{ID: u.ID, Username: u.Username, Avatar: u.Avatar, Level: u.Level})
	}
	JSONResult(c, nil, "", out)
}

func (h *CommunityHandler) Requests(c *gin.Context) {
	user := currentUser(c)
	incoming, err := h.friends.GetIncomingFriendRequests(c.Request.Context(), user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	outgoing, err := h.friends.GetOutgoingFriendRequests(c.Request.Context(), user.ID)
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "community/requests.html", gin.H{
		"Title":    "Friend requests",
		"Incoming": incoming,
		"Outgoing": outgoing,
	})
}

// Profile renders /u/:id for members and visitors alike.
func (h *CommunityHandler) Profile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	view, err := h.profiles.GetUserProfile(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RenderAppError(c, err)
		return
	}
	Render(c, http.StatusOK, "community/profile.html", gin.H{
		"Title":     view.User.Username,
		"Profile":   view,
		"DaysSince": utils.GetDaysSinceJoined(view.User.CreatedAt),
	})
}

func (h *CommunityHandler) SendRequest(c *gin.Context) {
	recipientID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	req, err := h.friends.SendFriendRequest(c.Request.Context(), currentUser(c).ID, recipientID)
	if err != nil {
		JSONResult(c, err, "", nil)
		return
	}
	JSONResult(c, nil, "Friend request sent to "+req.Recipient.Username, gin.H{"request_id": req.ID})
}

func (h *CommunityHandler) AcceptRequest(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	req, err := h.friends.AcceptFriendRequest(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		JSONResult(c, err, "", nil)
		return
	}
	JSONResult(c, nil, "You are now friends with "+req.Sender.Username, nil)
}

func (h *CommunityHandler) RejectRequest(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	_, err := h.friends.RejectFriendRequest(c.Request.Context(), id, currentUser(c).ID)
	JSONResult(c, err, "Friend request rejected", nil)
}

func (h *CommunityHandler) RemoveFriend(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		JSONResult(c, errBadID, "", nil)
		return
	}
	err := h.friends.RemoveFriend(c.Request.Context(), currentUser(c).ID, id)
	JSONResult(c, err, "Friend removed", nil)
}

// Leaderboard takes ?category=, ?scope=friends and ?limit=.
func (h *CommunityHandler) Leaderboard(c *gin.Context) {
	metric, err := services.ParseMetric(c.Query("category"))
	if err != nil {
		RenderAppError(c, err)
		return
	}
	limit := utils.StringToInt(c.Query("limit"))
	scope := c.DefaultQuery("scope", "global")

	var entries []models.LeaderboardEntry
	if scope == "friends" {
		entries, err = h.leaderboard.FriendsLeaderboard(c.Request.Context(), currentUser(c).ID, metric, limit)
	} else {
		scope = "global"
		entries, err = h.leaderboard.Rank(c.Request.Context(), metric, limit)
	}
	if err != nil {
		RenderAppError(c, err)
		return
	}

	if wantsJSON(c) {
		JSONResult(c, nil, "", entries)
		return
	}
	Render(c, http.StatusOK, "community/leaderboard.html", gin.H{
		"Title":      "Leaderboard",
		"Entries":    entries,
		"Category":   metric,
		"Categories": services.LeaderboardMetrics,
		"Scope":      scope,
	})
}
