// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

// Origin identifies who dispatched a call. The enclosing runtime builds it
// from an authenticated signature; it is never self-asserted.
type Origin struct {
	signer *AccountId
}

// Signed returns an origin authenticated as the given account
func Signed(account AccountId) Origin {
	return Origin{signer: &account}
}

// Unsigned returns an origin with no authenticated account
func Unsigned() Origin {
	return Origin{}
}

// Signer returns the authenticated account, if any
func (o Origin) Signer() (AccountId, bool) {
	if o.signer == nil {
		return AccountId{}, false
	}
	return *o.signer, true
}

func ensureSigned(o Origin) (AccountId, error) {
	who, ok := o.Signer()
	if !ok {
		return AccountId{}, ErrBadOrigin
	}
	return who, nil
}
