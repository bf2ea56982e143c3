package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/audit"
	"github.com/nilemovies/admin-console/internal/middleware"
	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

// UserHandler serves the user administration screens.
type UserHandler struct {
	API Catalog
}

func NewUserHandler(api Catalog) *UserHandler {
	return &UserHandler{API: api}
}

// List: fetch the user page matching the declared filters.
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := upstream.UserFilter{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   page,
		Limit:  limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	list, err := h.API.ListUsers(ctx, currentToken(c), filter)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	if list.Data == nil {
		list.Data = []model.AdminUser{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get: fetch a single user account.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	user, err := h.API.GetUser(ctx, currentToken(c), c.Param("id"))
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": user})
}

// Update: forward an account edit upstream.
func (h *UserHandler) Update(c echo.Context) error {
	var upd upstream.UserUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	id := c.Param("id")
	user, err := h.API.UpdateUser(ctx, sess.Token, id, upd)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}

	audit.Record(ctx, audit.Event{
		Action:      audit.ActionUserUpdated,
		ActorID:     sess.User.ID,
		ActorEmail:  sess.User.Email,
		TargetID:    id,
		TargetLabel: user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{"data": user})
}

// Delete: remove an account.  Deleting the account behind the current
// session is refused; the administrator should log out instead of sawing
// off the branch they sit on.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	id := c.Param("id")
	if id == sess.User.ID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete the account of the current session"})
	}
	if err := h.API.DeleteUser(ctx, sess.Token, id); err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}

	audit.Record(ctx, audit.Event{
		Action:     audit.ActionUserDeleted,
		ActorID:    sess.User.ID,
		ActorEmail: sess.User.Email,
		TargetID:   id,
	})

	return c.NoContent(http.StatusNoContent)
}
