package model

// Show identifies a single screening of a movie.  Every seat in a show
// costs the same PriceCents; there is no seat-tier pricing.  The client
// fetches a Show once when the seat picker mounts and never mutates it.
//
// Fields:
//  ID         – show identifier.
//  MovieID    – movie being screened.
//  TheaterID  – theater hosting the screening.
//  Screen     – screen number within the theater.
//  Date       – screening date (YYYY-MM-DD).
//  Time       – screening start time (HH:MM).
//  PriceCents – price per seat in minor currency units.
//  Rows, Cols – seat grid geometry.
type Show struct {
    ID         string `json:"id"`
    MovieID    string `json:"movie_id"`
    TheaterID  string `json:"theater_id"`
    Screen     int    `json:"screen"`
    Date       string `json:"date"`
    Time       string `json:"time"`
    PriceCents int64  `json:"price_cents"`
    Rows       int    `json:"rows"`
    Cols       int    `json:"cols"`
}
