package usecase

import (
	"fmt"
	"math"
	"sync"

	"github.com/mzton/vantage/internal/core/domain"
)

// MapSnapshot is everything the renderer needs to draw one session.
type MapSnapshot struct {
	View         domain.ViewState  `json:"viewState"`
	TransitionMs int64             `json:"transitionDuration,omitempty"`
	Style        string            `json:"style"`
	StyleURL     string            `json:"styleUrl"`
	Toggles      domain.MapToggles `json:"toggles"`
	Error        domain.MapError   `json:"error"`
}

// ViewStateController owns the camera, style, feature flags and the
// persistent map error of one session.
type ViewStateController struct {
	mu       sync.RWMutex
	settings ViewSettings
	view     domain.ViewState
	style    string
	toggles  domain.MapToggles
	mapErr   domain.MapError
}

func NewViewStateController(settings ViewSettings) *ViewStateController {
	return &ViewStateController{
		settings: settings,
		view:     settings.InitialView,
		style:    settings.DefaultStyle,
		toggles: domain.MapToggles{
			Show3DBuildings: true,
			ShowTerrain:     true,
			ShowClusters:    true,
		},
	}
}

func (c *ViewStateController) ViewState() domain.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// UpdateViewState merges a partial camera change. When the update carries a
// zoom but no pitch, pitch is derived from zoom by the auto-tilt rule.
// Plain updates are never animated unless a duration is supplied.
func (c *ViewStateController) UpdateViewState(u domain.ViewStateUpdate) domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.view
	if u.Latitude != nil && isFinite(*u.Latitude) {
		next.Latitude = clampLatitude(*u.Latitude)
	}
	if u.Longitude != nil && isFinite(*u.Longitude) {
		next.Longitude = wrapLongitude(*u.Longitude)
	}
	if u.Zoom != nil && isFinite(*u.Zoom) {
		next.Zoom = math.Max(*u.Zoom, 0)
	}
	if u.Bearing != nil {
		next.Bearing = domain.NormalizeBearing(*u.Bearing)
	}

	switch {
	case u.Pitch != nil:
		next.Pitch = c.settings.AutoTilt.ClampPitch(*u.Pitch)
	case u.Zoom != nil && isFinite(*u.Zoom):
		next.Pitch = c.settings.AutoTilt.PitchForZoom(next.Zoom)
	}

	next.TransitionDuration = 0
	if u.TransitionDuration != nil && *u.TransitionDuration > 0 {
		next.TransitionDuration = *u.TransitionDuration
	}

	c.view = next
	return next
}

// SetViewState replaces the camera outright. Values are normalized but pitch is not derived.
func (c *ViewStateController) SetViewState(v domain.ViewState) (domain.ViewState, error) {
	if !domain.ValidCoordinates(v.Latitude, v.Longitude) || !isFinite(v.Zoom) {
		return domain.ViewState{}, fmt.Errorf("%w: view (%v, %v) zoom %v", domain.ErrInvalidCoordinates, v.Latitude, v.Longitude, v.Zoom)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v.Zoom = math.Max(v.Zoom, 0)
	v.Bearing = domain.NormalizeBearing(v.Bearing)
	v.Pitch = c.settings.AutoTilt.ClampPitch(v.Pitch)
	if v.TransitionDuration < 0 {
		v.TransitionDuration = 0
	}
	c.view = v
	return v, nil
}

// FlyTo moves to a point with the fixed fly-to profile and returns the
// one-shot command for the renderer. A nil zoom uses the default fly-to zoom.
func (c *ViewStateController) FlyTo(lat, lng float64, zoom *float64) (domain.CameraCommand, error) {
	if !domain.ValidCoordinates(lat, lng) {
		return domain.CameraCommand{}, fmt.Errorf("%w: fly-to (%v, %v)", domain.ErrInvalidCoordinates, lat, lng)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	z := c.settings.FlyToZoom
	if zoom != nil && isFinite(*zoom) {
		z = math.Max(*zoom, 0)
	}

	c.view = domain.ViewState{
		Latitude:           lat,
		Longitude:          lng,
		Zoom:               z,
		Bearing:            c.settings.FlyToBearing,
		Pitch:              c.settings.FlyToPitch,
		TransitionDuration: c.settings.FlyToDuration,
	}

	return domain.NewFlyTo(
		domain.GeoPoint{Latitude: lat, Longitude: lng},
		z,
		c.settings.FlyToBearing,
		c.settings.FlyToPitch,
		c.settings.FlyToDuration,
	), nil
}

// EaseTo recenters and zooms with the short ease-to profile. Bearing is kept
// and pitch follows the auto-tilt rule.
func (c *ViewStateController) EaseTo(center domain.GeoPoint, zoom float64) (domain.CameraCommand, error) {
	if !domain.ValidCoordinates(center.Latitude, center.Longitude) || !isFinite(zoom) {
		return domain.CameraCommand{}, fmt.Errorf("%w: ease-to (%v, %v)", domain.ErrInvalidCoordinates, center.Latitude, center.Longitude)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	z := math.Max(zoom, 0)
	c.view.Latitude = center.Latitude
	c.view.Longitude = center.Longitude
	c.view.Zoom = z
	c.view.Pitch = c.settings.AutoTilt.PitchForZoom(z)
	c.view.TransitionDuration = c.settings.EaseToDuration

	return domain.NewEaseTo(center, z, c.settings.EaseToDuration), nil
}

// SetStyle switches the base style. Unknown ids are rejected and the current style is kept.
func (c *ViewStateController) SetStyle(styleID string) error {
	if _, ok := c.findStyle(styleID); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStyle, styleID)
	}

	c.mu.Lock()
	c.style = styleID
	c.mu.Unlock()
	return nil
}

func (c *ViewStateController) Style() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.style
}

// StyleURL resolves the current style. An unresolvable id yields the first configured style.
func (c *ViewStateController) StyleURL() string {
	return c.styleURL(c.Style())
}

func (c *ViewStateController) styleURL(styleID string) string {
	if s, ok := c.findStyle(styleID); ok {
		return s.URL
	}
	if len(c.settings.Styles) > 0 {
		return c.settings.Styles[0].URL
	}
	return ""
}

func (c *ViewStateController) findStyle(styleID string) (domain.MapStyle, bool) {
	for _, s := range c.settings.Styles {
		if s.ID == styleID {
			return s, true
		}
	}
	return domain.MapStyle{}, false
}

func (c *ViewStateController) SetFeature(feature domain.MapFeature, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	flag, err := c.featureFlag(feature)
	if err != nil {
		return err
	}
	*flag = enabled
	return nil
}

// ToggleFeature flips a rendering flag and returns its new value.
func (c *ViewStateController) ToggleFeature(feature domain.MapFeature) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	flag, err := c.featureFlag(feature)
	if err != nil {
		return false, err
	}
	*flag = !*flag
	return *flag, nil
}

func (c *ViewStateController) featureFlag(feature domain.MapFeature) (*bool, error) {
	switch feature {
	case domain.FeatureBuildings3D:
		return &c.toggles.Show3DBuildings, nil
	case domain.FeatureTerrain:
		return &c.toggles.ShowTerrain, nil
	case domain.FeatureClusters:
		return &c.toggles.ShowClusters, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
}

func (c *ViewStateController) Toggles() domain.MapToggles {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.toggles
}

// SetError raises the persistent error banner; nil clears it.
// There is no automatic retry: the banner stays until cleared or a new credential arrives.
func (c *ViewStateController) SetError(message *string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if message == nil {
		c.mapErr = domain.MapError{}
		return
	}
	c.mapErr = domain.MapError{HasError: true, Message: *message}
}

func (c *ViewStateController) ClearError() {
	c.SetError(nil)
}

func (c *ViewStateController) MapError() domain.MapError {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mapErr
}

// ResetView restores the initial camera and clears the error banner.
func (c *ViewStateController) ResetView() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view = c.settings.InitialView
	c.mapErr = domain.MapError{}
	return c.view
}

func (c *ViewStateController) Snapshot() MapSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return MapSnapshot{
		View:         c.view,
		TransitionMs: c.view.TransitionMs(),
		Style:        c.style,
		StyleURL:     c.styleURL(c.style),
		Toggles:      c.toggles,
		Error:        c.mapErr,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func wrapLongitude(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	w := math.Mod(lng+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}
