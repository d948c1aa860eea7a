package version

const (
	AppName = "PhantomBot"
	Version = "0.1.0"
)
