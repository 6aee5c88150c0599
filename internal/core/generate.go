package core

//go:generate mockgen -source=transport.go -destination=mock_core/transport.go -package=mock_core
//go:generate mockgen -source=capture_iface.go -destination=mock_core/capture_iface.go -package=mock_core
