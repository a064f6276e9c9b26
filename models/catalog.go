package models

// PrimaryID lets generic catalog code read the key of any entity.

func (f Floor) PrimaryID() uint    { return f.ID }
func (t RoomType) PrimaryID() uint { return t.ID }
func (r Room) PrimaryID() uint     { return r.ID }
func (c Category) PrimaryID() uint { return c.ID }
func (s Supplier) PrimaryID() uint { return s.ID }
func (c Client) PrimaryID() uint   { return c.ID }
func (p Product) PrimaryID() uint  { return p.ID }
