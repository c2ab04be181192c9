package di

// Names holds the keys under which bootstrap registers its own services.
// Factories may declare them as dependencies like any other key.
var Names = struct {
	Config Key
	Logger Key
	Tracer Key
	Meter  Key
}{
	Config: "scopekit.config",
	Logger: "scopekit.logger",
	Tracer: "scopekit.tracer",
	Meter:  "scopekit.meter",
}
