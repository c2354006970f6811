package usecase

import (
	"time"

	"github.com/mzton/vantage/internal/constants"
	"github.com/mzton/vantage/internal/core/domain"
)

// ViewSettings parameterizes a ViewStateController.
type ViewSettings struct {
	InitialView  domain.ViewState
	Styles       []domain.MapStyle
	DefaultStyle string
	AutoTilt     domain.AutoTiltConfig

	FlyToZoom      float64
	FlyToPitch     float64
	FlyToBearing   float64
	FlyToDuration  time.Duration
	EaseToDuration time.Duration
}

// DefaultViewSettings is the NYC city-scale camera profile.
func DefaultViewSettings() ViewSettings {
	styles := make([]domain.MapStyle, len(constants.MapStyles))
	copy(styles, constants.MapStyles)
	return ViewSettings{
		InitialView:    constants.InitialViewState,
		Styles:         styles,
		DefaultStyle:   constants.DefaultMapStyle,
		AutoTilt:       constants.AutoTiltConfig,
		FlyToZoom:      constants.FlyToZoom,
		FlyToPitch:     constants.FlyToPitch,
		FlyToBearing:   constants.FlyToBearing,
		FlyToDuration:  constants.FlyToDuration,
		EaseToDuration: constants.EaseToDuration,
	}
}
