package handlers

import (
	"net/http"
	"net/mail"
	"strings"

	"habitlink/internal/logger"
	"habitlink/internal/middleware"
	"habitlink/internal/models"
	"habitlink/internal/repository"
	"habitlink/internal/services"
	"habitlink/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const minPasswordLength = 6

type AuthHandler struct {
	users   repository.UserRepository
	captcha *services.CaptchaService
}

func NewAuthHandler(users repository.UserRepository, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{users: users, captcha: captcha}
}

// newCaptcha stores a fresh answer in the session and returns the question.
func (h *AuthHandler) newCaptcha(c *gin.Context) string {
	question, answer := h.captcha.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(services.CaptchaSessionKey, answer)
	_ = session.Save()
	return question
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Title": "Sign up", "Captcha": h.newCaptcha(c)})
}

func (h *AuthHandler) registerError(c *gin.Context, code int, message, email string) {
	Render(c, code, "auth/register.html", gin.H{
		"Title":   "Sign up",
		"Error":   message,
		"Email":   email,
		"Captcha": h.newCaptcha(c),
	})
}

// Register creates an account. The username is the local part of the email.
func (h *AuthHandler) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	session := sessions.Default(c)
	expected := session.Get(services.CaptchaSessionKey)
	session.Delete(services.CaptchaSessionKey)
	_ = session.Save()
	if !h.captcha.Verify(c.PostForm("captcha"), expected) {
		h.registerError(c, http.StatusBadRequest, "Incorrect answer to the security question", email)
		return
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		h.registerError(c, http.StatusBadRequest, "Please enter a valid email address", email)
		return
	}
	if len(password) < minPasswordLength {
		h.registerError(c, http.StatusBadRequest, "Password must be at least 6 characters", email)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		h.registerError(c, http.StatusInternalServerError, "Something went wrong, please try again later", email)
		return
	}
	user := &models.User{
		Username: strings.SplitN(email, "@", 2)[0],
		Email:    email,
		Password: hash,
		Avatar:   utils.GetRandomEmoji(),
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.registerError(c, models.StatusFor(err), models.PublicMessage(err), email)
		return
	}
	logger.Info("User registered", "user_id", user.ID)

	session.Set(middleware.SessionUserKey, user.ID)
	_ = session.Save()
	flash(c, "success", "Welcome to Habitlink, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		if err != nil && !models.IsCode(err, models.CodeNotFound) {
			logger.Error("Login lookup failed", "error", err)
		}
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Log in",
			"Error": "Invalid email or password",
			"Email": email,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	_ = session.Save()
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

// RefreshCaptcha issues a new question for the register form.
func (h *AuthHandler) RefreshCaptcha(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"captcha": h.newCaptcha(c)})
}
