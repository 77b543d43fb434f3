package httpgin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ihorkly/bookix/internal/domain"
	"github.com/ihorkly/bookix/internal/payment/razorpay"
	redisrepo "github.com/ihorkly/bookix/internal/repository/redis"
	"github.com/ihorkly/bookix/internal/service"
	"github.com/ihorkly/bookix/internal/service/admin"
	"github.com/ihorkly/bookix/internal/service/auth"
	"github.com/ihorkly/bookix/internal/service/booking"
	"github.com/ihorkly/bookix/internal/service/catalog"
	"github.com/ihorkly/bookix/internal/service/layout"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	payments *razorpay.Client,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth
	r.POST("/auth/signup", handleSignup(svcs))
	r.POST("/auth/signin", handleSignin(svcs))

	// Catalog
	r.GET("/events/explore/:city", handleExploreCity(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/events/:id/showings", handleListShowings(svcs))

	// Showings / seats
	r.GET("/showings/:id/details", handleBookingDetails(svcs))
	r.GET("/showings/:id/layout", handleGetLayout(svcs))
	r.GET("/showings/:id/availability", handleGetAvailability(svcs))

	r.POST("/showings/:id/reserve", handleReserveSeats(svcs, idem))
	r.POST("/showings/:id/confirm", handleConfirmSeats(svcs))
	r.POST("/showings/:id/release", handleReleaseSeats(svcs))

	// Payments
	r.POST("/payments/order", handleCreatePaymentOrder(payments))
	r.POST("/payments/verify", handleVerifyPayment(svcs, payments))

	// Admin API
	adm := r.Group("/admin", AuthMiddleware(svcs.Auth))
	{
		adm.POST("/venues", handleCreateVenue(svcs))
		adm.POST("/events", handleCreateEvent(svcs))
		adm.POST("/showings", handleAddShowing(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Sign up
// @Param    req body  SignupRequest true "payload"
// @Success  201 {object} map[string]int64
// @Failure  403 {object} ErrorResponse
// @Router   /auth/signup [post]
func handleSignup(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"user_id": id})
	}
}

// @Summary  Sign in
// @Param    req body  SigninRequest true "payload"
// @Success  200 {object} TokenResponse
// @Failure  403 {object} ErrorResponse
// @Router   /auth/signin [post]
func handleSignin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SigninRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		token, err := svcs.Auth.Signin(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, TokenResponse{Token: token})
	}
}

// @Summary  Explore events in a city
// @Param    city  path  string  true  "City"
// @Success  200  {array}  domain.Event
// @Router   /events/explore/{city} [get]
func handleExploreCity(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcs.Catalog.ExploreCity(c.Request.Context(), c.Param("city"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, events, "public, max-age=5", true)
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Catalog.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  List showings of an event
// @Param    id    path   int     true  "Event ID"
// @Param    city  query  string  true  "City"
// @Param    date  query  string  true  "Day (RFC3339)"
// @Success  200  {array}  domain.Showing
// @Router   /events/{id}/showings [get]
func handleListShowings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		day, err := parseRFC3339(c.Query("date"))
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}

		showings, err := svcs.Catalog.ListShowings(
			c.Request.Context(),
			eventID,
			c.Query("city"),
			day,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, showings, "public, max-age=15", true)
	}
}

// @Summary  Booking details of a showing
// @Param    id  path  int  true  "Showing ID"
// @Success  200  {object}  domain.BookingDetails
// @Failure  404  {object}  ErrorResponse
// @Router   /showings/{id}/details [get]
func handleBookingDetails(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		d, err := svcs.Catalog.BookingDetails(c.Request.Context(), showingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, d, "public, max-age=60", true)
	}
}

// @Summary  Rendered seat layout of a showing
// @Param    id  path  int  true  "Showing ID"
// @Success  200  {object}  domain.ShowingLayout
// @Failure  404  {object}  ErrorResponse
// @Router   /showings/{id}/layout [get]
func handleGetLayout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		lay, err := svcs.Layout.GetLayout(c.Request.Context(), showingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, lay)
	}
}

// @Summary  Seat availability counters
// @Param    id  path  int  true  "Showing ID"
// @Success  200  {object}  domain.ShowingCounts
// @Router   /showings/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		cnt, err := svcs.Catalog.Counts(c.Request.Context(), showingID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, cnt, "public, max-age=15", true)
	}
}

// @Summary  Reserve seats (idempotent)
// @Param    id  path  int  true  "Showing ID"
// @Param    req body  ReserveSeatsRequest true "payload"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200 {object} ReserveSeatsResponse
// @Failure  409 {object} ErrorResponse "seat already booked / idem in progress"
// @Failure  411 {object} ErrorResponse "invalid input"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /showings/{id}/reserve [post]
func handleReserveSeats(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ReserveSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c)
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemReserve(showingID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusOK,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		sels := make([]domain.SeatSelection, len(req.Seats))
		for i, s := range req.Seats {
			sels[i] = domain.SeatSelection{Row: s.Row, Number: s.Number}
		}

		rlKey := "ip:" + c.ClientIP()

		seatIDs, err := svcs.Booking.Reserve(c.Request.Context(), showingID, sels, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, booking.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: "rate limited"},
				)
				return
			}
			respondErr(c, err)
			return
		}

		resp := ReserveSeatsResponse{SeatIDs: uuidStrings(seatIDs)}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Confirm reserved seats
// @Param    id  path  int  true  "Showing ID"
// @Param    req body  ConfirmSeatsRequest true "payload"
// @Success  200 {object} map[string]string
// @Failure  409 {object} ErrorResponse
// @Router   /showings/{id}/confirm [post]
func handleConfirmSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ConfirmSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c)
			return
		}

		seatIDs, err := parseUUIDs(req.SeatIDs)
		if err != nil {
			invalidInput(c)
			return
		}

		if err := svcs.Booking.Confirm(c.Request.Context(), showingID, seatIDs); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Seats booked successfully! We sent tickets on your mail!",
		})
	}
}

// @Summary  Release reserved seats
// @Param    id  path  int  true  "Showing ID"
// @Param    req body  ReleaseSeatsRequest true "payload"
// @Success  200 {object} ReleaseSeatsResponse
// @Router   /showings/{id}/release [post]
func handleReleaseSeats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ReleaseSeatsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c)
			return
		}

		seatIDs, err := parseUUIDs(req.SeatIDs)
		if err != nil {
			invalidInput(c)
			return
		}

		released, err := svcs.Booking.Release(c.Request.Context(), showingID, seatIDs)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, ReleaseSeatsResponse{Released: released})
	}
}

// @Summary  Create payment order
// @Param    req body  CreateOrderRequest true "payload"
// @Success  200 {object} razorpay.Order
// @Router   /payments/order [post]
func handleCreatePaymentOrder(payments *razorpay.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "amount and currency are required")
			return
		}

		receipt := fmt.Sprintf("receipt_%s", uuid.New().String()[:8])

		order, err := payments.CreateOrder(
			c.Request.Context(),
			req.Amount*100, // smallest currency unit
			req.Currency,
			receipt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error creating order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// @Summary  Verify payment and book seats
// @Param    req body  VerifyPaymentRequest true "payload"
// @Success  200 {object} map[string]string
// @Failure  400 {object} ErrorResponse "signature mismatch"
// @Failure  409 {object} ErrorResponse "seats not reserved"
// @Router   /payments/verify [post]
func handleVerifyPayment(svcs *service.Services, payments *razorpay.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if !payments.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payment verification failed"})
			return
		}

		seatIDs, err := parseUUIDs(req.SeatIDs)
		if err != nil {
			invalidInput(c)
			return
		}

		if err := svcs.Booking.Confirm(c.Request.Context(), req.ShowingID, seatIDs); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "payment verified, seats booked"})
	}
}

// @Summary  Create venue
// @Param    req body  CreateVenueRequest true "payload"
// @Success  201 {object} CreateVenueResponse
// @Router   /admin/venues [post]
func handleCreateVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c)
			return
		}

		id, err := svcs.Admin.CreateVenue(c.Request.Context(), domain.Venue{
			Name:       req.Name,
			City:       req.City,
			Address:    req.Address,
			Capacity:   req.Capacity,
			SeatLayout: req.SeatLayout,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateVenueResponse{VenueID: id})
	}
}

// @Summary  Create event with showings
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		showings := make([]domain.Showing, 0, len(req.Showings))
		for _, sh := range req.Showings {
			date, err := parseRFC3339(sh.Date)
			if err != nil {
				badRequest(c, "invalid date (RFC3339)")
				return
			}
			showtime, err := parseRFC3339(sh.Showtime)
			if err != nil {
				badRequest(c, "invalid showtime (RFC3339)")
				return
			}

			showings = append(showings, domain.Showing{
				VenueID:    sh.VenueID,
				Date:       date,
				Showtime:   showtime,
				TotalSeats: sh.TotalSeats,
			})
		}

		id, err := svcs.Admin.CreateEvent(c.Request.Context(), domain.Event{
			Title:       req.Title,
			Host:        req.Host,
			Description: req.Description,
			Kind:        domain.EventKind(req.Kind),
			Category:    req.Category,
			Language:    req.Language,
			DurationMin: req.DurationMin,
			AgeLimit:    req.AgeLimit,
		}, showings)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Add showing to a venue
// @Param    req body  AddShowingRequest true "payload"
// @Success  201 {object} AddShowingResponse
// @Router   /admin/showings [post]
func handleAddShowing(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddShowingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		date, err := parseRFC3339(req.Date)
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}
		showtime, err := parseRFC3339(req.Showtime)
		if err != nil {
			badRequest(c, "invalid showtime (RFC3339)")
			return
		}

		id, err := svcs.Admin.AddShowing(c.Request.Context(), domain.Showing{
			EventID:    req.EventID,
			VenueID:    req.VenueID,
			Date:       date,
			Showtime:   showtime,
			TotalSeats: req.TotalSeats,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, AddShowingResponse{ShowingID: id})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(ids))
	for i, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// invalidInput mirrors the booking API contract: malformed seat payloads are
// answered with 411.
func invalidInput(c *gin.Context) {
	c.JSON(http.StatusLengthRequired, ErrorResponse{Error: "invalid input"})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// booking service
	case errors.Is(err, booking.ErrInvalidSelection):
		c.JSON(http.StatusLengthRequired, ErrorResponse{Error: "invalid input"})
		return
	case errors.Is(err, booking.ErrSeatTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seat already booked"})
		return
	case errors.Is(err, booking.ErrSeatsNotReserved):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats are not reserved"})
		return
	case errors.Is(err, booking.ErrShowingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "showing not found"})
		return
	// layout service
	case errors.Is(err, layout.ErrShowingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "showing not found"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, catalog.ErrShowingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "showing not found"})
		return
	// admin service
	case errors.Is(err, admin.ErrVenueConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "venue conflict"})
		return
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	case errors.Is(err, admin.ErrShowingConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "showing conflict"})
		return
	case errors.Is(err, admin.ErrUnknownVenue):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event or venue does not exist"})
		return
	case errors.Is(err, admin.ErrBadLayout):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seat layout template"})
		return
	// auth service
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "user with this email already signed up"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid credentials"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
