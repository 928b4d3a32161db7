package handlers

import (
	"net/http"
	"strings"

	"github.com/Qarib2004/reddit-sub000/internal/errs"
	"github.com/Qarib2004/reddit-sub000/internal/models"
	"github.com/Qarib2004/reddit-sub000/internal/msgs"

	"github.com/gin-gonic/gin"
)

func (rh *RestHandler) MustAuthenticateMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		jwtToken := ctx.GetHeader("Authorization")
		jwtToken = strings.TrimPrefix(jwtToken, "Bearer ")

		if jwtToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  models.ErrorsToStrings([]error{errs.ErrUnauthorized}),
			})
			return
		}

		claims, err := rh.authService.VerifyToken(jwtToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  models.ErrorsToStrings([]error{errs.ErrUnauthorized}),
			})
			return
		}

		ctx.Set("user_id", claims.ID)
		ctx.Set("user_email", claims.Email)
		ctx.Next()
	}
}
