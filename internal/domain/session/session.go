package session

// Principal identifies the acting user for a request. It is extracted from
// the verified JWT claims at the HTTP boundary and passed explicitly into
// every service operation; services never reach back into the request
// context for identity.
type Principal struct {
	UserID         string
	EmployeeID     string
	OrganizationID string
}

// ClientMeta carries client-supplied audit metadata recorded on ledger
// events.
type ClientMeta struct {
	IPAddress  *string
	DeviceInfo *string
}
