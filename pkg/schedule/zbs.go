package schedule

// ZBS is one of the rural region's "Zona Básica de Salud" sub-areas. The
// set is fixed: it comes from the association's duty organization, not from
// the bulletins, and is defined here at compile time.
type ZBS struct {
	ID    LocationID `json:"id"`
	Name  string     `json:"name"`
	Icon  string     `json:"icon,omitempty"`
	Notes string     `json:"notes,omitempty"`
}

// ZBSZones enumerates the eight rural sub-areas in display order.
var ZBSZones = []ZBS{
	{ID: "riaza-sepulveda", Name: "Riaza / Sepúlveda", Icon: "⛰️"},
	{ID: "cantalejo", Name: "Cantalejo", Icon: "🌾"},
	{ID: "carbonero", Name: "Carbonero el Mayor", Icon: "🌲"},
	{ID: "fuentiduena", Name: "Fuentidueña", Icon: "🏰"},
	{ID: "navas-de-la-asuncion", Name: "Nava de la Asunción", Icon: "🌻"},
	{ID: "villacastin", Name: "Villacastín", Icon: "🛤️"},
	{ID: "la-sierra", Name: "La Sierra", Icon: "🏔️", Notes: "Guardias en rotación quincenal entre dos farmacias."},
	{ID: "la-granja", Name: "La Granja", Icon: "🏛️", Notes: "Ambas farmacias comparten todas las guardias."},
}

// ZBSLocationIDs returns the location ids of all eight zones.
func ZBSLocationIDs() []LocationID {
	ids := make([]LocationID, len(ZBSZones))
	for i, zone := range ZBSZones {
		ids[i] = zone.ID
	}
	return ids
}

// ZBSByID returns the zone with the given id.
func ZBSByID(id LocationID) (ZBS, bool) {
	for _, zone := range ZBSZones {
		if zone.ID == id {
			return zone, true
		}
	}
	return ZBS{}, false
}
