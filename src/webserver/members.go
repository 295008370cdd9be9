package webserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kern046/8thWonderlandV4/src/member"
)

type Members struct {
	members *member.Manager
}

func NewMembers(members *member.Manager) Members { return Members{members: members} }

type profileResponse struct {
	ID              uint64    `json:"id"`
	Login           string    `json:"login"`
	Identity        string    `json:"identity"`
	Gender          int8      `json:"gender"`
	Email           string    `json:"email"`
	Avatar          string    `json:"avatar"`
	Language        string    `json:"language"`
	Country         string    `json:"country"`
	Region          int32     `json:"region"`
	LastConnectedAt time.Time `json:"lastConnectedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (m Members) Me(c *gin.Context) {
	mb, err := m.members.Member(c, memberID(c))
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		ID:              mb.ID,
		Login:           mb.Login,
		Identity:        mb.Identity,
		Gender:          mb.Gender,
		Email:           mb.Email,
		Avatar:          mb.Avatar,
		Language:        mb.Language,
		Country:         mb.Country,
		Region:          mb.Region,
		LastConnectedAt: mb.LastConnectedAt,
		CreatedAt:       mb.CreatedAt,
	})
}

func (m Members) UpdateMe(c *gin.Context) {
	var req struct {
		Login    *string `json:"login"`
		Identity *string `json:"identity"`
		Password *string `json:"password"`
		Gender   *int8   `json:"gender"`
		Email    *string `json:"email"`
		Avatar   *string `json:"avatar"`
		Language *string `json:"language"`
		Country  *string `json:"country"`
		Region   *int32  `json:"region"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	err := m.members.UpdateProfile(c, memberID(c), member.ProfileUpdate{
		Login:    req.Login,
		Identity: req.Identity,
		Password: req.Password,
		Gender:   req.Gender,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Language: req.Language,
		Country:  req.Country,
		Region:   req.Region,
	})
	if err != nil {
		switch {
		case errors.Is(err, member.ErrInvalidIdentity), errors.Is(err, member.ErrInvalidEmail):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"err": err.Error()})
		case errors.Is(err, member.ErrIdentityTaken),
			errors.Is(err, member.ErrLoginTaken),
			errors.Is(err, member.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
		case errors.Is(err, member.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// AddressBook pages through the community directory. Country and region
// names come back in the caller's configured language.
func (m Members) AddressBook(c *gin.Context) {
	mb, err := m.members.Member(c, memberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	groupID, _ := strconv.ParseUint(c.DefaultQuery("group", "0"), 10, 64)

	result, err := m.members.AddressBook(c, member.AddressBookSearch{
		GroupID:  groupID,
		Language: mb.Language,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (m Members) Countries(c *gin.Context) {
	mb, err := m.members.Member(c, memberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	countries, err := m.members.Countries(c, mb.Language)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

func (m Members) Stats(c *gin.Context) {
	total, err := m.members.CountMembers(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	active, err := m.members.CountActiveMembers(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": total, "activeMembers": active})
}
