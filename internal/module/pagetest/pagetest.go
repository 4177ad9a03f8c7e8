// Package pagetest is an in-memory stand-in for the session services and a
// stub renderer, shared by the page module tests.
package pagetest

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/parkdash/internal/domain"
	"github.com/simp-lee/parkdash/internal/module/page"
	"github.com/simp-lee/parkdash/internal/pkg"
	"github.com/simp-lee/parkdash/internal/session"
	"github.com/simp-lee/parkdash/internal/table"
)

// CommonTemplates stub the templates every module shares.
const CommonTemplates = `{{define "fragments/table.html"}}table:{{.Table.ID}}:{{.Table.State}}:{{.Table.TotalCount}}{{end}}` +
	`{{define "errors/404.html"}}404:{{.Message}}{{end}}` +
	`{{define "errors/500.html"}}500:{{.Message}}{{end}}`

// Services is an in-memory backend implementing every domain service.
// Setting one of the Err fields makes the matching calls fail.
type Services struct {
	mu sync.Mutex

	Me       string
	Parkings []domain.Parking
	Slots    []domain.Slot
	Vehicles []domain.Vehicle
	Users    []domain.User
	Orders   []domain.SlotOrder

	ListErr   error
	GetErr    error
	MutateErr error

	// Requests records every list read, in order.
	Requests []domain.PageRequest
	// Calls records every mutation as "Method id".
	Calls []string

	next int
}

// New returns an empty backend whose signed-in user is me.
func New(me string) *Services {
	return &Services{Me: me}
}

func (s *Services) id(prefix string) string {
	s.next++
	return prefix + strconv.Itoa(s.next)
}

func (s *Services) record(call string) {
	s.Calls = append(s.Calls, call)
}

// LastRequest returns the most recent list read.
func (s *Services) LastRequest() domain.PageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Requests) == 0 {
		return domain.PageRequest{}
	}
	return s.Requests[len(s.Requests)-1]
}

// Called reports whether call was recorded.
func (s *Services) Called(call string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Calls {
		if c == call {
			return true
		}
	}
	return false
}

func list[T any](s *Services, req domain.PageRequest, items []T, keep func(T) bool) domain.Result[domain.Envelope[T]] {
	s.Requests = append(s.Requests, req)
	if s.ListErr != nil {
		return domain.Fail[domain.Envelope[T]](s.ListErr)
	}
	matched := []T{}
	for _, it := range items {
		if keep == nil || keep(it) {
			matched = append(matched, it)
		}
	}
	size := req.PageSize
	if size <= 0 {
		size = 10
	}
	start := min(req.PageIndex*size, len(matched))
	end := min(start+size, len(matched))
	return domain.Ok(domain.Envelope[T]{
		Items:      matched[start:end],
		TotalCount: len(matched),
		Page:       req.PageIndex + 1,
		PageSize:   size,
		TotalPages: domain.TotalPages(len(matched), size),
	})
}

func get[T any](s *Services, id string, items []T, idOf func(T) string) domain.Result[T] {
	if id == "" {
		return domain.Disabled[T]()
	}
	if s.GetErr != nil {
		return domain.Fail[T](s.GetErr)
	}
	for _, it := range items {
		if idOf(it) == id {
			return domain.Ok(it)
		}
	}
	return domain.Fail[T](domain.ErrNotFound)
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), strings.ToLower(search)) {
			return true
		}
	}
	return false
}

// mutate runs the common preamble of every write: input validation, then
// the injected failure.
func (s *Services) mutate(call string, in any) error {
	if in != nil {
		if err := domain.Validate(in); err != nil {
			return err
		}
	}
	if s.MutateErr != nil {
		return s.MutateErr
	}
	s.record(call)
	return nil
}

func (s *Services) ListParkings(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Parking]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list(s, req, s.Parkings, nil)
}

func (s *Services) GetParking(_ context.Context, id string) domain.Result[domain.Parking] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, id, s.Parkings, func(p domain.Parking) string { return p.ID })
}

func (s *Services) ListSlots(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Slot]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list(s, req, s.Slots, func(sl domain.Slot) bool {
		if v := req.Filter("slotStatus"); v != "" && string(sl.ParkingSlotStatus) != v {
			return false
		}
		if v := req.Filter("slotSize"); v != "" && string(sl.ParkingSlotSize) != v {
			return false
		}
		return matches(req.Search, sl.ParkingSlotNumber)
	})
}

func (s *Services) GetSlot(_ context.Context, id string) domain.Result[domain.Slot] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, id, s.Slots, func(sl domain.Slot) string { return sl.ID })
}

func (s *Services) SlotStats(_ context.Context) domain.Result[domain.SlotStats] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return domain.Fail[domain.SlotStats](s.ListErr)
	}
	var st domain.SlotStats
	for _, sl := range s.Slots {
		st.Total++
		switch sl.ParkingSlotStatus {
		case domain.SlotAvailable:
			st.Available++
		case domain.SlotOccupied:
			st.Occupied++
		case domain.SlotMaintenance:
			st.Maintenance++
		}
	}
	return domain.Ok(st)
}

func (s *Services) CreateSlot(_ context.Context, in domain.CreateSlotInput) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("CreateSlot", in); err != nil {
		return nil, err
	}
	sl := domain.Slot{ID: s.id("s"), ParkingID: in.ParkingID, ParkingSlotNumber: "N-" + strconv.Itoa(s.next), ParkingSlotSize: in.SlotSize, ParkingSlotStatus: domain.SlotAvailable}
	s.Slots = append(s.Slots, sl)
	return &sl, nil
}

func (s *Services) CreateSlots(_ context.Context, in domain.BulkCreateSlotsInput) ([]domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("CreateSlots", in); err != nil {
		return nil, err
	}
	out := make([]domain.Slot, 0, in.NumberOfSlots)
	for i := 0; i < in.NumberOfSlots; i++ {
		sl := domain.Slot{ID: s.id("s"), ParkingSlotNumber: "N-" + strconv.Itoa(s.next), ParkingSlotSize: in.SlotSize, ParkingSlotStatus: domain.SlotAvailable}
		s.Slots = append(s.Slots, sl)
		out = append(out, sl)
	}
	return out, nil
}

func (s *Services) UpdateSlot(_ context.Context, id string, in domain.UpdateSlotInput) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("UpdateSlot "+id, in); err != nil {
		return nil, err
	}
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			if in.SlotSize != "" {
				s.Slots[i].ParkingSlotSize = in.SlotSize
			}
			if in.SlotStatus != "" {
				s.Slots[i].ParkingSlotStatus = in.SlotStatus
			}
			sl := s.Slots[i]
			return &sl, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Services) DeleteSlot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("DeleteSlot "+id, nil); err != nil {
		return err
	}
	for i := range s.Slots {
		if s.Slots[i].ID == id {
			s.Slots = append(s.Slots[:i], s.Slots[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func vehicleFilter(req domain.PageRequest) func(domain.Vehicle) bool {
	return func(v domain.Vehicle) bool {
		if y := req.Filter("year"); y != "" && strconv.Itoa(v.VehicleYear) != y {
			return false
		}
		return matches(req.Search, v.VehiclePlateNumber, v.VehicleBrand, v.VehicleModel)
	}
}

func (s *Services) ListVehicles(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list(s, req, s.Vehicles, vehicleFilter(req))
}

func (s *Services) ListMyVehicles(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.Vehicle]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := vehicleFilter(req)
	return list(s, req, s.Vehicles, func(v domain.Vehicle) bool { return v.UserID == s.Me && keep(v) })
}

func (s *Services) GetVehicle(_ context.Context, id string) domain.Result[domain.Vehicle] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, id, s.Vehicles, func(v domain.Vehicle) string { return v.ID })
}

func (s *Services) GetVehicleByPlate(_ context.Context, plate string) domain.Result[domain.Vehicle] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, plate, s.Vehicles, func(v domain.Vehicle) string { return v.VehiclePlateNumber })
}

func (s *Services) CreateVehicle(_ context.Context, in domain.VehicleInput) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("CreateVehicle", in); err != nil {
		return nil, err
	}
	v := domain.Vehicle{
		ID: s.id("v"), VehiclePlateNumber: in.VehiclePlateNumber, VehicleType: in.VehicleType,
		VehicleColor: in.VehicleColor, VehicleBrand: in.VehicleBrand, VehicleModel: in.VehicleModel,
		VehicleYear: in.VehicleYear, UserID: s.Me,
	}
	s.Vehicles = append(s.Vehicles, v)
	return &v, nil
}

func (s *Services) UpdateVehicle(_ context.Context, id string, in domain.UpdateVehicleInput) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("UpdateVehicle "+id, in); err != nil {
		return nil, err
	}
	for i := range s.Vehicles {
		if s.Vehicles[i].ID == id {
			v := &s.Vehicles[i]
			if in.VehiclePlateNumber != "" {
				v.VehiclePlateNumber = in.VehiclePlateNumber
			}
			if in.VehicleColor != "" {
				v.VehicleColor = in.VehicleColor
			}
			if in.VehicleYear != 0 {
				v.VehicleYear = in.VehicleYear
			}
			out := *v
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Services) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("DeleteVehicle "+id, nil); err != nil {
		return err
	}
	for i := range s.Vehicles {
		if s.Vehicles[i].ID == id {
			s.Vehicles = append(s.Vehicles[:i], s.Vehicles[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Services) ListUsers(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.User]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list(s, req, s.Users, func(u domain.User) bool { return matches(req.Search, u.Email, u.FullName()) })
}

func (s *Services) GetUser(_ context.Context, id string) domain.Result[domain.User] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, id, s.Users, func(u domain.User) string { return u.ID })
}

func (s *Services) CreateUser(_ context.Context, in domain.CreateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("CreateUser", in); err != nil {
		return nil, err
	}
	u := domain.User{ID: s.id("u"), Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, Role: domain.RoleUser}
	s.Users = append(s.Users, u)
	return &u, nil
}

func (s *Services) UpdateUser(_ context.Context, id string, in domain.UpdateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("UpdateUser "+id, in); err != nil {
		return nil, err
	}
	for i := range s.Users {
		if s.Users[i].ID == id {
			u := &s.Users[i]
			if in.FirstName != "" {
				u.FirstName = in.FirstName
			}
			if in.LastName != "" {
				u.LastName = in.LastName
			}
			if in.Email != "" {
				u.Email = in.Email
			}
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Services) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("DeleteUser "+id, nil); err != nil {
		return err
	}
	for i := range s.Users {
		if s.Users[i].ID == id {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Services) ListOrders(_ context.Context, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return list(s, req, s.Orders, nil)
}

func (s *Services) ListUserOrders(_ context.Context, userID string, req domain.PageRequest) domain.Result[domain.Envelope[domain.SlotOrder]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == "" {
		return domain.Disabled[domain.Envelope[domain.SlotOrder]]()
	}
	return list(s, req, s.Orders, func(o domain.SlotOrder) bool { return o.ParkingSlotCustomerID == userID })
}

func (s *Services) GetOrder(_ context.Context, id string) domain.Result[domain.SlotOrder] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s, id, s.Orders, func(o domain.SlotOrder) string { return o.ID })
}

func (s *Services) CreateOrder(_ context.Context, in domain.CreateOrderInput) (*domain.SlotOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("CreateOrder "+in.SlotID, in); err != nil {
		return nil, err
	}
	o := domain.SlotOrder{ID: s.id("o"), ParkingSlotID: in.SlotID, ParkingSlotCustomerID: s.Me, ParkingSlotOrderStatus: domain.OrderPending}
	s.Orders = append(s.Orders, o)
	return &o, nil
}

func (s *Services) UpdateOrderStatus(_ context.Context, id string, in domain.UpdateOrderStatusInput) (*domain.SlotOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("UpdateOrderStatus "+id+" "+string(in.Status), in); err != nil {
		return nil, err
	}
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].ParkingSlotOrderStatus = in.Status
			o := s.Orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Services) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate("DeleteOrder "+id, nil); err != nil {
		return err
	}
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders = append(s.Orders[:i], s.Orders[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Env resolves the same backend and tracker for every request.
type Env struct {
	Services *Services
	Tracker  *table.Tracker
}

// NewEnv creates an Env over s.
func NewEnv(s *Services) Env {
	return Env{Services: s, Tracker: table.NewTracker()}
}

// TrackerFor is a tracker resolver.
func (e Env) TrackerFor(*gin.Context) *table.Tracker {
	return e.Tracker
}

// NewRouter creates a test engine rendering the given stub templates after
// CommonTemplates. With a non-nil user every request runs as that user.
func NewRouter(templates string, user *domain.User) (*gin.Engine, page.Routes) {
	gin.SetMode(gin.TestMode)
	pkg.InstallValidator()

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(CommonTemplates + templates)))
	if user != nil {
		u := *user
		r.Use(func(c *gin.Context) {
			session.Attach(c, session.Authenticated("test-session", u, "test-token", time.Now().Add(time.Hour)))
			c.Next()
		})
	}
	return r, page.Routes{Public: &r.RouterGroup, User: r.Group("/"), Admin: r.Group("/admin")}
}

// Admin is a signed-in administrator.
var Admin = domain.User{ID: "admin-1", Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", Role: domain.RoleAdmin}

// Customer is a signed-in regular user.
var Customer = domain.User{ID: "user-1", Email: "user@example.com", FirstName: "Cy", LastName: "Customer", Role: domain.RoleUser}

// Do sends a request. form, when non-nil, is sent url-encoded. htmx marks
// the request as issued by htmx; target also sets HX-Target.
func Do(r http.Handler, method, target string, form url.Values, htmxTarget ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if len(htmxTarget) > 0 {
		req.Header.Set("HX-Request", "true")
		if htmxTarget[0] != "" {
			req.Header.Set("HX-Target", htmxTarget[0])
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Trigger decodes the HX-Trigger header. It returns nil when the header is
// absent or malformed.
func Trigger(w *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &m); err != nil {
		return nil
	}
	return m
}

// Toast returns the message and type of the toast in the response.
func Toast(w *httptest.ResponseRecorder) (message, kind string) {
	t, _ := Trigger(w)["showToast"].(map[string]any)
	message, _ = t["message"].(string)
	kind, _ = t["type"].(string)
	return message, kind
}

// Refreshed reports whether the response asks the table with id to re-read.
func Refreshed(w *httptest.ResponseRecorder, id string) bool {
	return Trigger(w)[table.RefreshEvent(id)] == true
}
