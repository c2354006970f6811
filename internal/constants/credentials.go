package constants

// MapTokenStorageKey is the fixed key of the user-supplied map token.
const MapTokenStorageKey = "vantage_mapbox_token"
