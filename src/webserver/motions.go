package webserver

import (
	"errors"
	"html"
	"log"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Kern046/8thWonderlandV4/src/motion"
)

type Motions struct {
	repo      *motion.Repository
	sanitizer *bluemonday.Policy
}

func NewMotions(repo *motion.Repository) Motions {
	// Strict sanitizer for citizen-authored text; motions allow basic
	// formatting only.
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")

	return Motions{repo: repo, sanitizer: sanitizer}
}

// List serves active motions. The default shape is the lightweight
// projection; ?detailed=true returns the hydrated entities.
func (m Motions) List(c *gin.Context) {
	citizenID := memberID(c)

	if c.Query("detailed") == "true" {
		rows, err := m.repo.ActiveMotionDetails(c, citizenID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"motions": rows})
		return
	}

	rows, err := m.repo.ActiveMotions(c, citizenID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"motions": rows})
}

func (m Motions) Themes(c *gin.Context) {
	themes, err := m.repo.Themes(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"themes": themes})
}

func (m Motions) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1,max=255"`
		Description string `json:"description" binding:"required,min=1,max=10000"`
		Means       string `json:"means" binding:"max=10000"`
		ThemeID     uint32 `json:"themeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	req.Title = html.EscapeString(req.Title)
	req.Description = m.sanitizer.Sanitize(req.Description)
	req.Means = m.sanitizer.Sanitize(req.Means)
	if !utf8.ValidString(req.Title) || !utf8.ValidString(req.Description) || !utf8.ValidString(req.Means) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid characters in input"})
		return
	}

	identity, _ := c.Get("identity")
	created, err := m.repo.CreateMotion(c, motion.NewMotion{
		Title:          req.Title,
		Description:    req.Description,
		Means:          req.Means,
		ThemeID:        req.ThemeID,
		AuthorID:       memberID(c),
		AuthorIdentity: identity.(string),
	})
	if err != nil {
		if errors.Is(err, motion.ErrInvalidTheme) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"err": "unknown motion theme"})
			return
		}
		log.Printf("motion creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "motion creation failed"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (m Motions) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad motion id"})
		return
	}

	details, err := m.repo.Motion(c, id)
	if err != nil {
		if errors.Is(err, motion.ErrMotionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "motion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	voted, err := m.repo.HasAlreadyVoted(c, id, memberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	details.HasAlreadyVoted = voted

	c.JSON(http.StatusOK, details)
}

func (m Motions) Vote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad motion id"})
		return
	}

	var req struct {
		Choice *bool `json:"choice" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if _, err := m.repo.Motion(c, id); err != nil {
		if errors.Is(err, motion.ErrMotionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "motion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	identity, _ := c.Get("identity")
	err = m.repo.CreateVote(c, id, memberID(c), identity.(string), time.Now().UTC(), c.ClientIP(), *req.Choice)
	if err != nil {
		switch {
		case errors.Is(err, motion.ErrDuplicateVote):
			c.JSON(http.StatusConflict, gin.H{"err": "already voted on this motion"})
		default:
			log.Printf("vote failed on motion %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"err": "vote not recorded"})
		}
		return
	}

	c.Status(http.StatusCreated)
}
