package webserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kern046/8thWonderlandV4/src/group"
)

type Groups struct {
	groups *group.Manager
}

func NewGroups(groups *group.Manager) Groups { return Groups{groups: groups} }

func (g Groups) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	result, err := g.groups.Groups(c, page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Map serves the pins of the community map: regional groups with their
// coordinates and member counts.
func (g Groups) Map(c *gin.Context) {
	points, err := g.groups.RegionalMap(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": points})
}

func (g Groups) Mine(c *gin.Context) {
	groups, err := g.groups.GroupsOf(c, memberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (g Groups) Contacts(c *gin.Context) {
	contacts, err := g.groups.ContactGroups(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (g Groups) Join(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad group id"})
		return
	}

	if err := g.groups.Join(c, id, memberID(c)); err != nil {
		if errors.Is(err, group.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (g Groups) UpdateContact(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad group id"})
		return
	}

	var req struct {
		ContactID uint64 `json:"contactId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := g.groups.UpdateContact(c, id, req.ContactID); err != nil {
		switch {
		case errors.Is(err, group.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"err": "group not found"})
		case errors.Is(err, group.ErrContactUnknown):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"err": "contact must be a group member"})
		default:
			log.Printf("contact change failed for group %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
