package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts one resource's routes (owners, users, turfs, bookings or
// health) on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
