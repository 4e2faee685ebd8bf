package bolt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/brk3/habitpanda/internal/storage"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"golang.org/x/oauth2"
)

const (
	habitsBucket    = "habits"
	checkInsBucket  = "checkins"
	remindersBucket = "reminders"
	authBucket      = "auth"

	// check-in keys are "YYYY-MM-DD/<uuid>" so cursor prefix seeks walk a
	// habit's check-ins in date order
	checkInDateFormat = "2006-01-02"

	apiKeyPrefix       = "apikey/"
	refreshTokenPrefix = "refresh/"
)

type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{habitsBucket, checkInsBucket, remindersBucket, authBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutHabit(h habit.Habit) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(h)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(habitsBucket)).Put([]byte(h.UUID.String()), val)
	})
}

func (s *Store) GetHabit(id uuid.UUID) (*habit.Habit, error) {
	var h habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(habitsBucket)).Get([]byte(id.String()))
		if val == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(val, &h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Store) ListHabits() ([]habit.Habit, error) {
	var out []habit.Habit
	err := s.db.View(func(tx *bbolt.Tx) error {
		return listHabitsTx(tx, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func listHabitsTx(tx *bbolt.Tx, out *[]habit.Habit) error {
	err := tx.Bucket([]byte(habitsBucket)).ForEach(func(_, v []byte) error {
		var h habit.Habit
		if err := json.Unmarshal(v, &h); err != nil {
			return err
		}
		*out = append(*out, h)
		return nil
	})
	if err != nil {
		return err
	}
	sortHabits(*out)
	return nil
}

func sortHabits(habits []habit.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].Order != habits[j].Order {
			return habits[i].Order < habits[j].Order
		}
		return habits[i].CreatedAt < habits[j].CreatedAt
	})
}

// DeleteHabit removes the habit with its check-ins and reminders, then
// re-packs the remaining habits' order rank to a contiguous 0..N-1.
func (s *Store) DeleteHabit(id uuid.UUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		hb := tx.Bucket([]byte(habitsBucket))
		if hb.Get([]byte(id.String())) == nil {
			return storage.ErrNotFound
		}
		if err := hb.Delete([]byte(id.String())); err != nil {
			return err
		}

		cb := tx.Bucket([]byte(checkInsBucket))
		if cb.Bucket([]byte(id.String())) != nil {
			if err := cb.DeleteBucket([]byte(id.String())); err != nil {
				return err
			}
		}

		rb := tx.Bucket([]byte(remindersBucket))
		var reminderKeys [][]byte
		err := rb.ForEach(func(k, v []byte) error {
			var r habit.Reminder
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if r.HabitUUID == id {
				reminderKeys = append(reminderKeys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range reminderKeys {
			if err := rb.Delete(k); err != nil {
				return err
			}
		}

		return fixHabitOrderTx(tx)
	})
}

// fixHabitOrderTx renumbers habits to a contiguous 0..N-1 by their current
// (order, createdAt) sort.
func fixHabitOrderTx(tx *bbolt.Tx) error {
	var habits []habit.Habit
	if err := listHabitsTx(tx, &habits); err != nil {
		return err
	}
	hb := tx.Bucket([]byte(habitsBucket))
	for i := range habits {
		if habits[i].Order == i {
			continue
		}
		habits[i].Order = i
		val, err := json.Marshal(habits[i])
		if err != nil {
			return err
		}
		if err := hb.Put([]byte(habits[i].UUID.String()), val); err != nil {
			return err
		}
	}
	return nil
}

func checkInKey(c *habit.CheckIn) []byte {
	return fmt.Appendf(nil, "%s/%s", c.CheckInDate.Format(checkInDateFormat), c.UUID)
}

// AddCheckIn stores a check-in, enforcing the day-off invariant: a non-day-off
// check-in evicts any day-off record on the same date, and a day-off check-in
// is rejected when the date already has a qualifying check-in.
func (s *Store) AddCheckIn(c habit.CheckIn) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(habitsBucket)).Get([]byte(c.HabitUUID.String())) == nil {
			return storage.ErrNotFound
		}
		bucket, err := tx.Bucket([]byte(checkInsBucket)).CreateBucketIfNotExists([]byte(c.HabitUUID.String()))
		if err != nil {
			return err
		}

		prefix := []byte(c.CheckInDate.Format(checkInDateFormat) + "/")
		cur := bucket.Cursor()
		var dayOffKeys [][]byte
		hasQualifying := false
		for k, v := cur.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cur.Next() {
			var existing habit.CheckIn
			if err := json.Unmarshal(v, &existing); err != nil {
				return err
			}
			if existing.IsDayOff() {
				dayOffKeys = append(dayOffKeys, append([]byte(nil), k...))
			} else {
				hasQualifying = true
			}
		}

		if c.IsDayOff() {
			if hasQualifying {
				return fmt.Errorf("date %s already has a qualifying check-in",
					c.CheckInDate.Format(checkInDateFormat))
			}
		} else {
			// an explicit override never coexists with a real check-in
			for _, k := range dayOffKeys {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
		}

		val, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return bucket.Put(checkInKey(&c), val)
	})
}

func (s *Store) ListCheckIns(habitIDs []uuid.UUID, from, to *time.Time) ([]habit.CheckIn, error) {
	var out []habit.CheckIn
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb := tx.Bucket([]byte(checkInsBucket))

		var habitKeys [][]byte
		if habitIDs == nil {
			if err := cb.ForEachBucket(func(k []byte) error {
				habitKeys = append(habitKeys, append([]byte(nil), k...))
				return nil
			}); err != nil {
				return err
			}
		} else {
			for _, id := range habitIDs {
				habitKeys = append(habitKeys, []byte(id.String()))
			}
		}

		for _, hk := range habitKeys {
			bucket := cb.Bucket(hk)
			if bucket == nil {
				continue
			}
			cur := bucket.Cursor()
			var k, v []byte
			if from != nil {
				k, v = cur.Seek([]byte(from.Format(checkInDateFormat)))
			} else {
				k, v = cur.First()
			}
			for ; k != nil; k, v = cur.Next() {
				if to != nil {
					datePart, _, _ := strings.Cut(string(k), "/")
					if datePart > to.Format(checkInDateFormat) {
						break
					}
				}
				var c habit.CheckIn
				if err := json.Unmarshal(v, &c); err != nil {
					return err
				}
				out = append(out, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckInDate.Before(out[j].CheckInDate)
	})
	return out, nil
}

func (s *Store) DeleteCheckIn(habitID, checkInID uuid.UUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(checkInsBucket)).Bucket([]byte(habitID.String()))
		if bucket == nil {
			return storage.ErrNotFound
		}
		suffix := []byte("/" + checkInID.String())
		cur := bucket.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			if bytes.HasSuffix(k, suffix) {
				return cur.Delete()
			}
		}
		return storage.ErrNotFound
	})
}

func (s *Store) DeleteCheckInsThrough(habitID uuid.UUID, through time.Time) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(checkInsBucket)).Bucket([]byte(habitID.String()))
		if bucket == nil {
			return nil
		}
		cutoff := through.Format(checkInDateFormat)
		cur := bucket.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			datePart, _, _ := strings.Cut(string(k), "/")
			if datePart > cutoff {
				break
			}
			if err := cur.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Store) PutReminder(r habit.Reminder) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(habitsBucket)).Get([]byte(r.HabitUUID.String())) == nil {
			return storage.ErrNotFound
		}
		val, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(remindersBucket)).Put([]byte(r.UUID.String()), val)
	})
}

func (s *Store) GetReminder(id uuid.UUID) (*habit.Reminder, error) {
	var r habit.Reminder
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(remindersBucket)).Get([]byte(id.String()))
		if val == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(val, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListReminders(habitID uuid.UUID) ([]habit.Reminder, error) {
	all, err := s.ListAllReminders()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if r.HabitUUID == habitID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListAllReminders() ([]habit.Reminder, error) {
	var out []habit.Reminder
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(remindersBucket)).ForEach(func(_, v []byte) error {
			var r habit.Reminder
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].UUID.String() < out[j].UUID.String()
	})
	return out, nil
}

func (s *Store) DeleteReminder(id uuid.UUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rb := tx.Bucket([]byte(remindersBucket))
		if rb.Get([]byte(id.String())) == nil {
			return storage.ErrNotFound
		}
		return rb.Delete([]byte(id.String()))
	})
}

// ReplaceAll wipes habit data (auth material survives) and installs the given
// records in one transaction. Order is re-packed afterwards so an import with
// gaps still ends up contiguous.
func (s *Store) ReplaceAll(habits []habit.Habit, checkIns []habit.CheckIn, reminders []habit.Reminder) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{habitsBucket, checkInsBucket, remindersBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}

		hb := tx.Bucket([]byte(habitsBucket))
		for i := range habits {
			val, err := json.Marshal(habits[i])
			if err != nil {
				return err
			}
			if err := hb.Put([]byte(habits[i].UUID.String()), val); err != nil {
				return err
			}
		}

		cb := tx.Bucket([]byte(checkInsBucket))
		for i := range checkIns {
			c := &checkIns[i]
			bucket, err := cb.CreateBucketIfNotExists([]byte(c.HabitUUID.String()))
			if err != nil {
				return err
			}
			val, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := bucket.Put(checkInKey(c), val); err != nil {
				return err
			}
		}

		rb := tx.Bucket([]byte(remindersBucket))
		for i := range reminders {
			val, err := json.Marshal(reminders[i])
			if err != nil {
				return err
			}
			if err := rb.Put([]byte(reminders[i].UUID.String()), val); err != nil {
				return err
			}
		}

		return fixHabitOrderTx(tx)
	})
}

func (s *Store) PutAPIKey(keyHash, userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(authBucket)).Put([]byte(apiKeyPrefix+keyHash), []byte(userID))
	})
}

func (s *Store) GetAPIKey(keyHash string) (string, bool, error) {
	var userID string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(authBucket)).Get([]byte(apiKeyPrefix + keyHash))
		if val != nil {
			userID = string(val)
			found = true
		}
		return nil
	})
	return userID, found, err
}

func (s *Store) PutRefreshToken(userID string, tok *oauth2.Token) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(tok)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(authBucket)).Put([]byte(refreshTokenPrefix+userID), val)
	})
}

func (s *Store) GetRefreshToken(userID string) (*oauth2.Token, bool, error) {
	var tok oauth2.Token
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(authBucket)).Get([]byte(refreshTokenPrefix + userID))
		if val == nil {
			return nil
		}
		found = true
		return json.Unmarshal(val, &tok)
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &tok, true, nil
}

func (s *Store) DeleteRefreshToken(userID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(authBucket)).Delete([]byte(refreshTokenPrefix + userID))
	})
}

var _ storage.Store = (*Store)(nil)
